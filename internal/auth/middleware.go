package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/models"
)

// ContextKeyIdentity is the gin context key holding the request identity
const ContextKeyIdentity = "identity"

// DefaultCookie is the cookie consulted when no Authorization header is sent
const DefaultCookie = "token"

// Identify resolves the optional identity of a request from a bearer token or
// the session cookie. Missing or invalid tokens leave the request anonymous.
func Identify(m *Manager, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookie
	}
	return func(c *gin.Context) {
		if token := extractToken(c, cookieName); token != "" {
			if id, err := m.Parse(token); err == nil {
				c.Set(ContextKeyIdentity, id)
			}
		}
		c.Next()
	}
}

// IdentityFrom returns the request identity, nil when anonymous
func IdentityFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*models.Identity)
	return id
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		return ""
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}
