package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"enquiry-admin-console/internal/api/middleware"
	"enquiry-admin-console/internal/auth"
	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/console"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionMaxAge = 7 * 24 * time.Hour

// Authenticator is the backend login call.
type Authenticator interface {
	Login(ctx context.Context, req backend.LoginRequest) (backend.LoginResult, error)
}

type AuthHandler struct {
	Backend  Authenticator
	Tokens   *auth.TokenStore
	Registry *console.Registry
	Logger   *zap.Logger
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

type LoginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login signs in against the backend and opens a console session for admins.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Backend.Login(c.Request.Context(), backend.LoginRequest{Email: payload.Email, Password: payload.Password})
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			h.Logger.Info("Login rejected", zap.String("email", payload.Email), zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.Logger.Error("Login failed", zap.Error(err))
		respondError(c, err)
		return
	}
	if !result.User.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": auth.ErrForbiddenRole.Error()})
		return
	}

	sessionID, err := h.Tokens.Create(c.Request.Context(), result.Token)
	if err != nil {
		h.Logger.Error("Failed to open console session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sessionID, int(sessionMaxAge.Seconds()), "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"sessionId": sessionID,
		"user":      result.User,
	})
}

// Logout ends the console session and drops the admin's in-memory
// workspace. The cached assignments are kept.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Tokens.Remove(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.Logger.Error("Failed to remove session token", zap.Error(err))
	}
	if h.Registry != nil {
		h.Registry.Forget(middleware.CurrentUser(c).ID)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}
