// Package me serves a signed-in patient's own data.
package me

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dentalcare/internal/handler"
	patienthandler "github.com/jwalitptl/dentalcare/internal/handler/patient"
	"github.com/jwalitptl/dentalcare/internal/middleware"
	"github.com/jwalitptl/dentalcare/internal/service/patient"
	"github.com/jwalitptl/dentalcare/internal/service/stats"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

type Handler struct {
	patients *patient.Service
	stats    *stats.Service
}

func NewHandler(patients *patient.Service, statsSvc *stats.Service) *Handler {
	return &Handler{patients: patients, stats: statsSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	me := r.Group("/me")
	{
		me.GET("/profile", h.Profile)
		me.GET("/summary", h.Summary)
		me.GET("/records", h.Records)
		me.GET("/appointments", h.Appointments)
	}
}

// patientID returns the patient linked to the token, aborting if there is none.
func patientID(c *gin.Context) (string, bool) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.PatientID == "" {
		handler.RespondError(c, apperrors.Forbidden(nil))
		return "", false
	}
	return claims.PatientID, true
}

func (h *Handler) Profile(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}
	p, err := h.patients.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) Summary(c *gin.Context) {
	if id, ok := patientID(c); ok {
		patienthandler.RespondSummary(c, h.stats, id)
	}
}

func (h *Handler) Records(c *gin.Context) {
	if id, ok := patientID(c); ok {
		patienthandler.RespondRecords(c, h.stats, id)
	}
}

func (h *Handler) Appointments(c *gin.Context) {
	if id, ok := patientID(c); ok {
		patienthandler.RespondAppointments(c, h.stats, id)
	}
}
