package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dentalcare/internal/handler"
	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/service/patient"
	"github.com/jwalitptl/dentalcare/internal/service/stats"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

type Handler struct {
	service *patient.Service
	stats   *stats.Service
}

func NewHandler(service *patient.Service, statsSvc *stats.Service) *Handler {
	return &Handler{
		service: service,
		stats:   statsSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)

		patients.GET("/:id/incidents", h.ListIncidents)
		patients.GET("/:id/summary", h.Summary)
		patients.GET("/:id/records", h.Records)
		patients.GET("/:id/appointments", h.Appointments)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filter model.PatientFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.RespondError(c, apperrors.BadRequest("invalid query", err))
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var p model.Patient
	if !handler.BindJSON(c, &p) {
		return
	}
	p.ID = ""

	if err := h.service.CreatePatient(c.Request.Context(), &p); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.service.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var p model.Patient
	if !handler.BindJSON(c, &p) {
		return
	}
	p.ID = c.Param("id")

	if err := h.service.UpdatePatient(c.Request.Context(), &p); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if err := h.service.DeletePatient(c.Request.Context(), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListIncidents(c *gin.Context) {
	incidents, err := h.service.ListIncidents(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(incidents))
}

func (h *Handler) Summary(c *gin.Context) {
	RespondSummary(c, h.stats, c.Param("id"))
}

func (h *Handler) Records(c *gin.Context) {
	RespondRecords(c, h.stats, c.Param("id"))
}

func (h *Handler) Appointments(c *gin.Context) {
	RespondAppointments(c, h.stats, c.Param("id"))
}

// RespondSummary writes the overview of one patient's incidents.
func RespondSummary(c *gin.Context, svc *stats.Service, patientID string) {
	sum, err := svc.PatientSummary(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sum))
}

// RespondRecords writes a patient's history, narrowed by the year query.
func RespondRecords(c *gin.Context, svc *stats.Service, patientID string) {
	records, err := svc.PatientRecords(c.Request.Context(), patientID, c.Query("year"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

// RespondAppointments writes a patient's incidents for the view query.
func RespondAppointments(c *gin.Context, svc *stats.Service, patientID string) {
	view := model.AppointmentView(c.DefaultQuery("view", string(model.AppointmentViewAll)))
	if !view.IsValid() {
		handler.RespondError(c, apperrors.BadRequest("unknown appointment view", nil))
		return
	}
	list, err := svc.Appointments(c.Request.Context(), patientID, view)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}
