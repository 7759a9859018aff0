package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

const articleColumns = `
	a.id, a.title, a.content, a.image, a.published, a.views, a.category_id, a.author_id,
	a.created_at, a.updated_at, c.id, c.name, c.slug, u.id, u.name, u.email
`

const articleJoins = `
	FROM articles a
	JOIN categories c ON c.id = a.category_id
	JOIN users u ON u.id = a.author_id
`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var image, authorName sql.NullString
	var category models.CategoryRef
	var author models.UserRef

	err := row.Scan(
		&article.ID, &article.Title, &article.Content, &image, &article.Published, &article.Views,
		&article.CategoryID, &article.AuthorID, &article.CreatedAt, &article.UpdatedAt,
		&category.ID, &category.Name, &category.Slug,
		&author.ID, &authorName, &author.Email,
	)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		article.Image = &image.String
	}
	if authorName.Valid {
		author.Name = &authorName.String
	}
	article.Category = &category
	article.Author = &author

	return &article, nil
}

func (r *articleRepo) queryArticles(ctx context.Context, query string, args ...interface{}) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []*models.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// List returns every article, newest first
func (r *articleRepo) List(ctx context.Context) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + articleJoins + ` ORDER BY a.created_at DESC`
	return r.queryArticles(ctx, query)
}

// Search returns a page of published articles matching the filter and the total match count
func (r *articleRepo) Search(ctx context.Context, search models.ArticleSearch) ([]*models.Article, int, error) {
	conditions := []string{"a.published = TRUE"}
	var args []interface{}

	if search.Query != "" {
		args = append(args, "%"+search.Query+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(a.title ILIKE $%d OR a.content ILIKE $%d OR c.name ILIKE $%d)", n, n, n,
		))
	}
	if search.CategorySlug != "" {
		args = append(args, search.CategorySlug)
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", len(args)))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*)` + articleJoins + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := search.Limit
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	args = append(args, limit, search.Offset)
	query := `SELECT ` + articleColumns + articleJoins + where +
		fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	articles, err := r.queryArticles(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// GetByID retrieves an article with its category and author
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + articleJoins + ` WHERE a.id = $1`

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Exists checks if an article with the given ID exists
func (r *articleRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (id, title, content, image, published, views, category_id, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Content, article.Image, article.Published, article.Views,
		article.CategoryID, article.AuthorID, article.CreatedAt, article.UpdatedAt,
	)
	return mapError(err)
}

// Update overwrites the editable fields of an article
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles
		SET title = $2, content = $3, image = $4, category_id = $5, updated_at = $6
		WHERE id = $1
	`
	article.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Content, article.Image, article.CategoryID, article.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an article; its comments cascade
func (r *articleRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IncrementViews atomically bumps the view counter
func (r *articleRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE articles SET views = views + 1 WHERE id = $1", id)
	return err
}
