package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

const (
	principalKey    = "principal"
	sessionTokenKey = "session_token"
)

type sessionResolver interface {
	Get(ctx context.Context, token string) (*models.Session, error)
}

// AuthMiddleware resolves the bearer session and stores the principal on
// the request context.
type AuthMiddleware struct {
	sessions    sessionResolver
	rateLimiter *InvalidAuthRateLimiter
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(sessions sessionResolver, rateLimiter *InvalidAuthRateLimiter) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, rateLimiter: rateLimiter}
}

// Handle returns a Gin middleware function that enforces authentication.
// Every failure produces the same 401.
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			m.handleAuthError(c)
			return
		}

		session, err := m.sessions.Get(c.Request.Context(), token)
		if err != nil || session == nil {
			m.handleAuthError(c)
			return
		}
		p := session.Principal()
		if p == nil {
			m.handleAuthError(c)
			return
		}

		SetPrincipal(c, p)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

func (m *AuthMiddleware) handleAuthError(c *gin.Context) {
	if m.rateLimiter != nil && !m.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}
	utils.HandleError(c, utils.Unauthenticated())
	c.Abort()
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// SetPrincipal stores p on the request context.
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the authenticated principal, or nil.
func GetPrincipal(c *gin.Context) models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(models.Principal)
	return p
}

// SessionToken returns the bearer token the request authenticated with.
func SessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}
