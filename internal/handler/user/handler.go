package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dentalcare/internal/handler"
	"github.com/jwalitptl/dentalcare/internal/service/auth"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.ListUsers)
}

// ListUsers returns every account without its password.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.Users(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}
