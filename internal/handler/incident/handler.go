package incident

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dentalcare/internal/handler"
	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/service/incident"
	"github.com/jwalitptl/dentalcare/internal/storage"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

type Handler struct {
	service *incident.Service
}

func NewHandler(service *incident.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, upload ...gin.HandlerFunc) {
	incidents := r.Group("/incidents")
	{
		incidents.POST("", h.CreateIncident)
		incidents.GET("", h.ListIncidents)
		incidents.GET("/:id", h.GetIncident)
		incidents.PUT("/:id", h.UpdateIncident)
		incidents.DELETE("/:id", h.DeleteIncident)

		incidents.POST("/:id/files", append(upload, h.UploadFile)...)
		incidents.GET("/:id/files/:fileId", h.DownloadFile)
		incidents.DELETE("/:id/files/:fileId", h.DeleteFile)
	}
}

func (h *Handler) ListIncidents(c *gin.Context) {
	var filter model.IncidentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.RespondError(c, apperrors.BadRequest("invalid query", err))
		return
	}

	entries, err := h.service.ListIncidents(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) CreateIncident(c *gin.Context) {
	var inc model.Incident
	if !handler.BindJSON(c, &inc) {
		return
	}
	inc.ID = ""

	if err := h.service.CreateIncident(c.Request.Context(), &inc); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(inc))
}

func (h *Handler) GetIncident(c *gin.Context) {
	inc, err := h.service.GetIncident(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(inc))
}

// UpdateIncident replaces the incident. Attachments are managed through the
// files endpoints, so a body without "files" keeps the stored ones.
func (h *Handler) UpdateIncident(c *gin.Context) {
	var inc model.Incident
	if !handler.BindJSON(c, &inc) {
		return
	}
	inc.ID = c.Param("id")

	if err := h.service.UpdateIncident(c.Request.Context(), &inc); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(inc))
}

func (h *Handler) DeleteIncident(c *gin.Context) {
	if err := h.service.DeleteIncident(c.Request.Context(), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadFile attaches the multipart field "file" to the incident.
func (h *Handler) UploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		handler.RespondError(c, handler.BodyError("missing file", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("unreadable file", err))
		return
	}
	defer f.Close()

	att, err := h.service.AddAttachment(c.Request.Context(), c.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(att))
}

// DownloadFile serves the decoded bytes of an attachment.
func (h *Handler) DownloadFile(c *gin.Context) {
	att, err := h.service.GetAttachment(c.Request.Context(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	mimeType, data, err := storage.DecodeDataURL(att.URL)
	if err != nil {
		handler.RespondError(c, apperrors.Serialization(att.ID, err))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(att.Name))
	c.Data(http.StatusOK, mimeType, data)
}

func (h *Handler) DeleteFile(c *gin.Context) {
	if err := h.service.RemoveAttachment(c.Request.Context(), c.Param("id"), c.Param("fileId")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
