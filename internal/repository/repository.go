package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

var (
	// ErrDuplicate is returned when a unique constraint (email, slug) is violated
	ErrDuplicate = errors.New("duplicate key")
	// ErrInUse is returned when a row cannot be deleted because other rows reference it
	ErrInUse = errors.New("referenced by other records")
)

// PostgreSQL error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	List(ctx context.Context) ([]*models.Article, error)
	Search(ctx context.Context, search models.ArticleSearch) ([]*models.Article, int, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) (bool, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Upsert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	// ListByArticle returns every comment of the article, oldest first, with authors
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) (bool, error)
}

// StatsRepository defines the aggregate queries behind the dashboard
type StatsRepository interface {
	CountArticles(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
	CountCategories(ctx context.Context) (int, error)
	SumViews(ctx context.Context) (int, error)
	// MonthBucket aggregates articles created in [from, to)
	MonthBucket(ctx context.Context, from, to time.Time) (models.MonthBucket, error)
	TopCategories(ctx context.Context, limit int) ([]models.CategoryCount, error)
	TopArticles(ctx context.Context, limit int) ([]models.TopArticle, error)
	RecentArticles(ctx context.Context, limit int) ([]models.RecentArticle, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article  ArticleRepository
	Category CategoryRepository
	User     UserRepository
	Comment  CommentRepository
	Stats    StatsRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:  NewArticleRepo(db),
		Category: NewCategoryRepo(db),
		User:     NewUserRepo(db),
		Comment:  NewCommentRepo(db),
		Stats:    NewStatsRepo(db),
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// mapError translates constraint violations into repository sentinels
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInUse, pqErr.Constraint)
		}
	}
	return err
}
