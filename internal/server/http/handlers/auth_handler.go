package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/floristportal/internal/server/http/dto"
	"github.com/polkiloo/floristportal/internal/server/http/middleware"
)

// AuthHandler processes login and session lookups.
type AuthHandler struct {
	facade AuthFacade
	logger *slog.Logger
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{facade: facade, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.facade.Login(c.Request.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	middleware.SetAuthCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, dto.SessionResponse{
		User:      dto.NewUserResponse(session.User),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearAuthCookie(c)
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.facade.Me(c.Request.Context(), CurrentActor(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
