package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/auditlog"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// DashboardHandler handles admin statistics and the audit log
type DashboardHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(services *service.Services, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		services: services,
		log:      log.With().Str("handler", "dashboard").Logger(),
	}
}

// Stats handles GET /v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Analytics.DashboardStats(c.Request.Context()))
}

// Logs handles GET /v1/dashboard/logs?page=...&limit=...&level=...
func (h *DashboardHandler) Logs(c *gin.Context) {
	page, err := h.services.Log.List(c.Request.Context(), auth.IdentityFrom(c),
		queryInt(c, "page", 1),
		queryInt(c, "limit", auditlog.DefaultLimit),
		c.DefaultQuery("level", auditlog.LevelAll),
	)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ClearLogs handles DELETE /v1/dashboard/logs
func (h *DashboardHandler) ClearLogs(c *gin.Context) {
	if err := h.services.Log.Clear(c.Request.Context(), auth.IdentityFrom(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info().Msg("Audit log cleared")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
