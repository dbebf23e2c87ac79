// console/internal/api/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"enquiry-admin-console/internal/auth"
	"enquiry-admin-console/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	SessionCookie = "console_session"
	SessionHeader = "X-Console-Session"

	LoginPath = "/login"

	ctxUser      = "user"
	ctxUserID    = "user_id"
	ctxToken     = "token"
	ctxSessionID = "session_id"
)

// AdminGate lets a request through only when it carries the token of an
// admin. The token is read from the console session (cookie or header), then
// from a bearer header, then from the token query parameter used by
// websockets. Rejections are 401 with a redirect hint and no detail.
func AdminGate(gate *auth.Gate, tokens *auth.TokenStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := SessionID(c)
		token := ""
		if sessionID != "" {
			stored, err := tokens.Load(c.Request.Context(), sessionID)
			if err != nil {
				logger.Error("Failed to read session token", zap.Error(err))
			}
			token = stored
		}
		if token == "" {
			token = bearer(c)
		}
		if token == "" {
			token = c.Query("token")
		}

		user, err := gate.Check(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    gateMessage(err),
				"redirect": LoginPath,
			})
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Set(ctxToken, token)
		c.Set(ctxSessionID, sessionID)
		c.Next()
	}
}

// SessionID is the console session named by the request, if any.
func SessionID(c *gin.Context) string {
	if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
		return id
	}
	return c.GetHeader(SessionHeader)
}

// CurrentUser is the admin admitted by AdminGate.
func CurrentUser(c *gin.Context) models.AuthUser {
	user, _ := c.Get(ctxUser)
	u, _ := user.(models.AuthUser)
	return u
}

// Token is the backend token of the admitted admin.
func Token(c *gin.Context) string {
	return c.GetString(ctxToken)
}

func bearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func gateMessage(err error) string {
	for _, known := range []error{auth.ErrMissingToken, auth.ErrExpiredToken, auth.ErrInvalidToken, auth.ErrForbiddenRole} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return auth.ErrInvalidToken.Error()
}
