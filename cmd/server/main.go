package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/newsroom-api/internal/api"
	"github.com/newsroom-api/internal/auditlog"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/cache"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/service"
	"github.com/newsroom-api/internal/storage"
	"github.com/newsroom-api/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(config.LogConfig{})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info().Msg("Starting newsroom API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	checks := []api.HealthCheck{{Name: "database", Check: db.HealthCheck}}

	// Render cache is optional
	pages, closeCache := connectCache(cfg.Redis, log)
	defer closeCache()
	if rc, ok := pages.(*cache.RedisCache); ok {
		checks = append(checks, api.HealthCheck{Name: "redis", Check: rc.Ping})
	}

	// Image store
	images, err := storage.New(cfg.Uploads, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image storage")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize services
	services := service.NewServices(repos, service.Infra{
		Audit:  auditlog.New(cfg.AuditLog.Path, log),
		Cache:  pages,
		Images: images,
	}, cfg, log)

	// Initialize router
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	router := api.NewRouter(services, tokens, cfg, log, checks...)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	db.LogStats()

	log.Info().Msg("Server exited gracefully")
}

// connectCache returns the Redis render cache, or a no-op cache when Redis
// is not configured or unreachable
func connectCache(cfg config.RedisConfig, log zerolog.Logger) (cache.PageCache, func()) {
	if cfg.URL == "" {
		log.Info().Msg("REDIS_URL not set, render cache disabled")
		return cache.Nop{}, func() {}
	}

	rc, err := cache.Connect(cfg.URL, cfg.TTL, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, render cache disabled")
		return cache.Nop{}, func() {}
	}

	return rc, func() {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
}
