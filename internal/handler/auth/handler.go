package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dentalcare/internal/handler"
	"github.com/jwalitptl/dentalcare/internal/middleware"
	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/service/auth"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts login on r and the signed-in endpoints on protected.
func (h *Handler) RegisterRoutes(r, protected *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)

	auth := protected.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out successfully"))
}

// Me returns the user the token was issued to.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		handler.RespondError(c, apperrors.Unauthorized(nil))
		return
	}
	users, err := h.svc.Users(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	for _, u := range users {
		if u.ID == claims.UserID {
			c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
			return
		}
	}
	handler.RespondError(c, apperrors.Unauthorized(nil))
}
