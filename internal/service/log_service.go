package service

import (
	"context"

	"github.com/newsroom-api/internal/models"
	"github.com/rs/zerolog"
)

// logService is the concrete implementation of LogService
type logService struct {
	audit AuditLog
	log   zerolog.Logger
}

func newLogService(audit AuditLog, log zerolog.Logger) *logService {
	return &logService{
		audit: audit,
		log:   log.With().Str("service", "log").Logger(),
	}
}

// List returns a page of audit records, latest first. Read failures yield an empty page.
func (s *logService) List(ctx context.Context, actor *models.Identity, page, limit int, level string) (*models.LogPage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	result, err := s.audit.Read(ctx, page, limit, level)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read audit log")
		if result == nil {
			result = &models.LogPage{Logs: []models.LogEntry{}}
		}
		result.Logs = []models.LogEntry{}
		result.Pagination.Total = 0
		result.Pagination.Pages = 0
	}
	return result, nil
}

// Clear empties the audit log
func (s *logService) Clear(ctx context.Context, actor *models.Identity) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.audit.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear audit log")
		return storeFailure("Failed to clear logs", err)
	}
	return nil
}
