// Package auditlog is the user-visible event log: one JSON record per line in
// a single append-only file, read back latest first with level filtering and
// page slicing.
package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newsroom-api/internal/models"
	"github.com/rs/zerolog"
)

// DefaultPath is where the log lives when nothing else is configured
const DefaultPath = "logs/app.log"

// DefaultLimit is the page size used when the caller passes none
const DefaultLimit = 20

// LevelAll disables level filtering on Read
const LevelAll = "ALL"

const timeFormat = "2006-01-02T15:04:05.000Z"

// Sink appends to and reads from one audit log file
type Sink struct {
	path string
	log  zerolog.Logger
	now  func() time.Time

	mu sync.Mutex
}

// New creates a sink over the file at path
func New(path string, log zerolog.Logger) *Sink {
	if path == "" {
		path = DefaultPath
	}
	return &Sink{
		path: path,
		log:  log.With().Str("component", "auditlog").Logger(),
		now:  time.Now,
	}
}

// Path returns the file backing the sink
func (s *Sink) Path() string {
	return s.path
}

// Append writes one record. meta is JSON-encoded into the record's meta string;
// actor is snapshotted. On failure the record goes to the process log instead
// and the error is returned.
func (s *Sink) Append(ctx context.Context, level models.LogLevel, message string, meta interface{}, actor *models.Identity) error {
	entry := models.LogEntry{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: s.now().UTC().Format(timeFormat),
		User:      snapshot(actor),
	}

	if meta != nil {
		encoded, err := json.Marshal(meta)
		if err != nil {
			return s.fallback(entry, fmt.Errorf("failed to encode meta: %w", err))
		}
		m := string(encoded)
		entry.Meta = &m
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return s.fallback(entry, fmt.Errorf("failed to encode entry: %w", err))
	}
	line = append(line, '\n')

	if err := s.write(line); err != nil {
		return s.fallback(entry, err)
	}
	return nil
}

// Info appends an INFO record
func (s *Sink) Info(ctx context.Context, message string, meta interface{}, actor *models.Identity) error {
	return s.Append(ctx, models.LogInfo, message, meta, actor)
}

// Warn appends a WARN record
func (s *Sink) Warn(ctx context.Context, message string, meta interface{}, actor *models.Identity) error {
	return s.Append(ctx, models.LogWarn, message, meta, actor)
}

// Error appends an ERROR record
func (s *Sink) Error(ctx context.Context, message string, meta interface{}, actor *models.Identity) error {
	return s.Append(ctx, models.LogError, message, meta, actor)
}

func (s *Sink) write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

func (s *Sink) fallback(entry models.LogEntry, err error) error {
	event := s.log.Error().Err(err).
		Str("level", string(entry.Level)).
		Str("message", entry.Message)
	if entry.Meta != nil {
		event = event.Str("meta", *entry.Meta)
	}
	event.Msg("Failed to write audit log entry")
	return err
}

// Read returns one page of records, latest first. level "" or "ALL" means
// every level; otherwise only exact matches are kept. A missing file is an
// empty log.
func (s *Sink) Read(ctx context.Context, page, limit int, level string) (*models.LogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	result := &models.LogPage{
		Logs:       []models.LogEntry{},
		Pagination: models.LogPagination{Page: page, Limit: limit},
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to read log file: %w", err)
	}

	entries := parseLines(data)

	filtered := make([]models.LogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if level == "" || level == LevelAll || string(entries[i].Level) == level {
			filtered = append(filtered, entries[i])
		}
	}

	total := len(filtered)
	result.Pagination.Total = total
	result.Pagination.Pages = int(math.Ceil(float64(total) / float64(limit)))

	if page <= result.Pagination.Pages {
		start := (page - 1) * limit
		end := start + limit
		if end > total {
			end = total
		}
		result.Logs = filtered[start:end]
	}

	return result, nil
}

// Clear truncates the log to empty, creating it if missing
func (s *Sink) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return fmt.Errorf("failed to clear log file: %w", err)
	}
	return nil
}

func parseLines(data []byte) []models.LogEntry {
	var entries []models.LogEntry
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry *models.LogEntry
		if err := json.Unmarshal(line, &entry); err != nil || entry == nil {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

func snapshot(actor *models.Identity) *models.LogUser {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	u := &models.LogUser{ID: actor.UserID, Email: actor.Email}
	if actor.Name != "" {
		name := actor.Name
		u.Name = &name
	}
	return u
}
