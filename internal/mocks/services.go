package mocks

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/newsroom-api/internal/cache"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/newsroom-api/internal/storage"
)

// MemoryCache is an in-memory PageCache that records invalidations
type MemoryCache struct {
	mu          sync.Mutex
	Entries     map[string][]byte
	Invalidated []string
}

// Verify interface compliance
var _ cache.PageCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Entries: make(map[string][]byte)}
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Entries[key]
	return v, ok
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[key] = value
}

func (m *MemoryCache) InvalidateArticle(ctx context.Context, articleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Entries, cache.RenderKey(articleID))
	delete(m.Entries, cache.CommentsKey(articleID))
	m.Invalidated = append(m.Invalidated, articleID)
	return nil
}

// MemoryImageStore is an in-memory ImageStore
type MemoryImageStore struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

// Verify interface compliance
var _ storage.ImageStore = (*MemoryImageStore)(nil)

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{Files: make(map[string][]byte)}
}

func (m *MemoryImageStore) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[name] = data
	return "/uploads/" + name, nil
}

// Names returns the stored file names
func (m *MemoryImageStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.Files))
	for n := range m.Files {
		names = append(names, n)
	}
	return names
}

// MockAuditLog is an in-memory AuditLog
type MockAuditLog struct {
	mu       sync.Mutex
	Entries  []models.LogEntry
	ReadErr  error
	ClearErr error
}

// Verify interface compliance
var _ service.AuditLog = (*MockAuditLog)(nil)

func NewMockAuditLog() *MockAuditLog {
	return &MockAuditLog{}
}

func (m *MockAuditLog) Append(ctx context.Context, level models.LogLevel, message string, meta interface{}, actor *models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := models.LogEntry{Level: level, Message: message}
	if actor != nil {
		entry.User = &models.LogUser{ID: actor.UserID, Email: actor.Email}
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockAuditLog) Read(ctx context.Context, page, limit int, level string) (*models.LogPage, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	logs := []models.LogEntry{}
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if level == "" || level == "ALL" || string(m.Entries[i].Level) == level {
			logs = append(logs, m.Entries[i])
		}
	}
	return &models.LogPage{
		Logs:       logs,
		Pagination: models.LogPagination{Total: len(logs), Pages: 1, Page: page, Limit: limit},
	}, nil
}

func (m *MockAuditLog) Clear(ctx context.Context) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = nil
	return nil
}

// Messages returns the messages of every entry at level, oldest first
func (m *MockAuditLog) Messages(level models.LogLevel) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.Entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// HasMessage reports whether any entry message starts with prefix
func (m *MockAuditLog) HasMessage(prefix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if strings.HasPrefix(e.Message, prefix) {
			return true
		}
	}
	return false
}

// MockAnalyticsService is a mock implementation of AnalyticsService
type MockAnalyticsService struct {
	Stats *models.DashboardStats
	Calls int
}

// Verify interface compliance
var _ service.AnalyticsService = (*MockAnalyticsService)(nil)

func (m *MockAnalyticsService) DashboardStats(ctx context.Context) *models.DashboardStats {
	m.Calls++
	if m.Stats == nil {
		return service.EmptyStats()
	}
	return m.Stats
}

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	ListFunc   func(ctx context.Context, articleID string) ([]*models.Comment, error)
	CreateFunc func(ctx context.Context, actor *models.Identity, in *models.CommentInput) (*models.Comment, error)
	DeleteFunc func(ctx context.Context, actor *models.Identity, id string) error
}

// Verify interface compliance
var _ service.CommentService = (*MockCommentService)(nil)

func (m *MockCommentService) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, articleID)
	}
	return []*models.Comment{}, nil
}

func (m *MockCommentService) Create(ctx context.Context, actor *models.Identity, in *models.CommentInput) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, in)
	}
	return &models.Comment{ID: "comment-1", Content: in.Content, ArticleID: in.ArticleID}, nil
}

func (m *MockCommentService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, id)
	}
	return nil
}
