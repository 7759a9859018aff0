package service

import (
	"context"
	"io"
	"time"

	"github.com/newsroom-api/internal/blocks"
	"github.com/newsroom-api/internal/cache"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/storage"
	"github.com/rs/zerolog"
)

// AuditLog is the user-visible event log
type AuditLog interface {
	Append(ctx context.Context, level models.LogLevel, message string, meta interface{}, actor *models.Identity) error
	Read(ctx context.Context, page, limit int, level string) (*models.LogPage, error)
	Clear(ctx context.Context) error
}

// Upload is an image file attached to an article create or update
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// SearchQuery filters and pages the public article listing
type SearchQuery struct {
	Query        string
	CategorySlug string
	Page         int
	Limit        int
}

// ArticleView is the public detail of an article with its rendered body
type ArticleView struct {
	*models.Article
	Text   string        `json:"text"`
	HTML   string        `json:"html"`
	Blocks []blocks.Node `json:"blocks"`
}

// ArticleService defines the interface for article operations
type ArticleService interface {
	List(ctx context.Context) ([]*models.Article, error)
	Search(ctx context.Context, q SearchQuery) (*models.ArticlePage, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	View(ctx context.Context, id string) (*ArticleView, error)
	Create(ctx context.Context, actor *models.Identity, in *models.ArticleInput, upload *Upload) (*models.Article, error)
	Update(ctx context.Context, actor *models.Identity, id string, in *models.ArticleInput, upload *Upload) (*models.Article, error)
	Delete(ctx context.Context, actor *models.Identity, id string) error
}

// CategoryService defines the interface for category operations
type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, actor *models.Identity, in *models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, actor *models.Identity, id string, in *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, actor *models.Identity, id string) error
}

// UserService defines the interface for user operations
type UserService interface {
	List(ctx context.Context, actor *models.Identity) ([]*models.User, error)
	Get(ctx context.Context, actor *models.Identity, id string) (*models.User, error)
	Create(ctx context.Context, actor *models.Identity, in *models.UserInput) (*models.User, error)
	Update(ctx context.Context, actor *models.Identity, id string, in *models.UserInput) (*models.User, error)
	Delete(ctx context.Context, actor *models.Identity, id string) error
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
}

// CommentService defines the interface for comment operations
type CommentService interface {
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	Create(ctx context.Context, actor *models.Identity, in *models.CommentInput) (*models.Comment, error)
	Delete(ctx context.Context, actor *models.Identity, id string) error
}

// AnalyticsService defines the interface for dashboard aggregates
type AnalyticsService interface {
	DashboardStats(ctx context.Context) *models.DashboardStats
}

// LogService defines the interface for reading and clearing the audit log
type LogService interface {
	List(ctx context.Context, actor *models.Identity, page, limit int, level string) (*models.LogPage, error)
	Clear(ctx context.Context, actor *models.Identity) error
}

// Infra holds the non-database collaborators of the services
type Infra struct {
	Audit  AuditLog
	Cache  cache.PageCache
	Images storage.ImageStore
	Now    func() time.Time
}

// Services holds all service interfaces
type Services struct {
	Article   ArticleService
	Category  CategoryService
	User      UserService
	Comment   CommentService
	Analytics AnalyticsService
	Log       LogService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, infra Infra, cfg *config.Config, log zerolog.Logger) *Services {
	if infra.Cache == nil {
		infra.Cache = cache.Nop{}
	}
	if infra.Now == nil {
		infra.Now = time.Now
	}

	maxUpload := cfg.Uploads.MaxSize
	maxDepth := cfg.Comments.MaxDepth

	return &Services{
		Article:   newArticleService(repos.Article, repos.Category, infra, maxUpload, log),
		Category:  newCategoryService(repos.Category, infra.Audit, log),
		User:      newUserService(repos.User, infra.Audit, log),
		Comment:   newCommentService(repos.Comment, repos.Article, infra.Audit, infra.Cache, maxDepth, infra.Now, log),
		Analytics: newAnalyticsService(repos.Stats, infra.Now, log),
		Log:       newLogService(infra.Audit, log),
	}
}
