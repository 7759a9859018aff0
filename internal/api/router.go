package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// HealthCheck probes one dependency for GET /health
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, tokens *auth.Manager, cfg *config.Config, log zerolog.Logger, checks ...HealthCheck) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if cfg.Uploads.MaxSize > 0 {
		router.MaxMultipartMemory = cfg.Uploads.MaxSize
	}

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	router.Use(auth.Identify(tokens, cfg.Auth.CookieName))

	// Handlers
	authHandler := NewAuthHandler(services, tokens, cfg.Auth.CookieName, log)
	newsHandler := NewNewsHandler(services, log)
	commentHandler := NewCommentHandler(services, log)
	categoryHandler := NewCategoryHandler(services, log)
	userHandler := NewUserHandler(services, log)
	dashboardHandler := NewDashboardHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(checks))

	// Locally stored images
	if cfg.Uploads.Driver == config.UploadDriverLocal {
		router.Static(cfg.Uploads.URLPrefix, cfg.Uploads.Dir)
	}

	// API v1
	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authHandler.Me)
		}

		news := v1.Group("/news")
		{
			news.GET("", newsHandler.Search)
			news.GET("/:id", newsHandler.View)
			news.GET("/:id/comments", commentHandler.List)
			news.POST("/:id/comments", commentHandler.Create)
		}

		v1.DELETE("/comments/:id", commentHandler.Delete)

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
		}

		dashboard := v1.Group("/dashboard", auth.RequireAdmin())
		{
			dashboard.GET("/stats", dashboardHandler.Stats)

			dashboard.GET("/news", newsHandler.List)
			dashboard.POST("/news", newsHandler.Create)
			dashboard.GET("/news/:id", newsHandler.Get)
			dashboard.PUT("/news/:id", newsHandler.Update)
			dashboard.DELETE("/news/:id", newsHandler.Delete)

			dashboard.GET("/categories", categoryHandler.List)
			dashboard.POST("/categories", categoryHandler.Create)
			dashboard.PUT("/categories/:id", categoryHandler.Update)
			dashboard.DELETE("/categories/:id", categoryHandler.Delete)

			dashboard.GET("/users", userHandler.List)
			dashboard.POST("/users", userHandler.Create)
			dashboard.GET("/users/:id", userHandler.Get)
			dashboard.PUT("/users/:id", userHandler.Update)
			dashboard.DELETE("/users/:id", userHandler.Delete)

			dashboard.GET("/logs", dashboardHandler.Logs)
			dashboard.DELETE("/logs", dashboardHandler.ClearLogs)
		}
	}

	return router
}

// healthCheck returns the health status, 503 when a dependency check fails
func healthCheck(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		components := gin.H{}
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				components[hc.Name] = err.Error()
				status, code = "unhealthy", http.StatusServiceUnavailable
				continue
			}
			components[hc.Name] = "ok"
		}

		c.JSON(code, gin.H{
			"status":     status,
			"timestamp":  time.Now().Format(time.RFC3339),
			"service":    "newsroom-api",
			"components": components,
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if id := auth.IdentityFrom(c); id != nil {
			event = event.Str("user_id", id.UserID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware allows the configured front-end origins, or any origin when none are set
func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = origins
	}
	return cors.New(corsConfig)
}
