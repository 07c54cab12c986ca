package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dentalcare/internal/handler"
	"github.com/jwalitptl/dentalcare/internal/service/stats"
)

type Handler struct {
	svc *stats.Service
}

func NewHandler(svc *stats.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	s := r.Group("/stats")
	{
		s.GET("/dashboard", h.Dashboard)
		s.GET("/quick", h.Quick)
		s.GET("/revenue", h.Revenue)
		s.GET("/calendar", h.Calendar)
		s.GET("/day", h.Day)
		s.GET("/compare", h.Compare)
		s.POST("/snapshots", h.Snapshot)
	}
}

// respond writes v or the error, whichever the view produced.
func respond(c *gin.Context, v interface{}, err error) {
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(v))
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context())
	respond(c, d, err)
}

func (h *Handler) Quick(c *gin.Context) {
	q, err := h.svc.QuickStats(c.Request.Context())
	respond(c, q, err)
}

func (h *Handler) Revenue(c *gin.Context) {
	r, err := h.svc.Revenue(c.Request.Context())
	respond(c, r, err)
}

// Calendar takes ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) Calendar(c *gin.Context) {
	m, err := h.svc.Calendar(c.Request.Context(), c.Query("month"))
	respond(c, m, err)
}

// Day takes ?date=YYYY-MM-DD, defaulting to today.
func (h *Handler) Day(c *gin.Context) {
	entries, err := h.svc.Day(c.Request.Context(), c.Query("date"))
	respond(c, entries, err)
}

func (h *Handler) Compare(c *gin.Context) {
	cmp, err := h.svc.Compare(c.Request.Context(), c.Query("month"))
	respond(c, cmp, err)
}

func (h *Handler) Snapshot(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context(), c.Query("month"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(snap))
}
