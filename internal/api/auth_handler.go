package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// AuthHandler handles sign-in endpoints
type AuthHandler struct {
	services   *service.Services
	tokens     *auth.Manager
	cookieName string
	log        zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, tokens *auth.Manager, cookieName string, log zerolog.Logger) *AuthHandler {
	if cookieName == "" {
		cookieName = auth.DefaultCookie
	}
	return &AuthHandler{
		services:   services,
		tokens:     tokens,
		cookieName: cookieName,
		log:        log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /v1/auth/login
// Issues a session token as JSON and as an HTTP-only cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	identity, err := h.services.User.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(*identity)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)

	h.log.Info().Str("user_id", identity.UserID).Msg("User signed in")

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"user":       identity,
	})
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": identity})
}
