package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nv0skar/Noisier/internal/application/services"
)

type AuthHandler struct {
	svc *services.AuthService
	*Responder
}

func NewAuthHandler(svc *services.AuthService, r *Responder) *AuthHandler {
	return &AuthHandler{svc: svc, Responder: r}
}

// Login handles POST {prefix}/login
func (h *AuthHandler) Login(c *gin.Context) {
	form, err := ReadBody(c)
	if err != nil {
		h.RespondAppError(c, err)
		return
	}

	session, err := h.svc.Login(c.Request.Context(), form)
	if err != nil {
		h.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Register handles POST {prefix}/register
func (h *AuthHandler) Register(c *gin.Context) {
	form, err := ReadBody(c)
	if err != nil {
		h.RespondAppError(c, err)
		return
	}

	session, err := h.svc.Register(c.Request.Context(), form)
	if err != nil {
		h.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
