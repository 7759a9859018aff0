package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

// statsRepo is the concrete implementation of StatsRepository
type statsRepo struct {
	db *database.DB
}

// NewStatsRepo creates a new stats repository
func NewStatsRepo(db *database.DB) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) count(ctx context.Context, query string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

// CountArticles returns the total number of articles
func (r *statsRepo) CountArticles(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM articles")
}

// CountUsers returns the total number of users
func (r *statsRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM users")
}

// CountCategories returns the total number of categories
func (r *statsRepo) CountCategories(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM categories")
}

// SumViews returns the views of all articles, 0 when there are none
func (r *statsRepo) SumViews(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COALESCE(SUM(views), 0) FROM articles")
}

// MonthBucket counts articles and sums their views for those created in [from, to)
func (r *statsRepo) MonthBucket(ctx context.Context, from, to time.Time) (models.MonthBucket, error) {
	var b models.MonthBucket
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(views), 0) FROM articles WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&b.Articles, &b.Views)
	return b, err
}

// TopCategories returns categories by descending article count
func (r *statsRepo) TopCategories(ctx context.Context, limit int) ([]models.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, COUNT(a.id) AS article_count
		FROM categories c
		LEFT JOIN articles a ON a.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY article_count DESC, c.name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.CategoryCount{}
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

// TopArticles returns the most viewed articles
func (r *statsRepo) TopArticles(ctx context.Context, limit int) ([]models.TopArticle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.title, a.views, c.id, c.name, c.slug, a.created_at
		FROM articles a
		JOIN categories c ON c.id = a.category_id
		ORDER BY a.views DESC, a.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []models.TopArticle{}
	for rows.Next() {
		var t models.TopArticle
		err := rows.Scan(&t.ID, &t.Title, &t.Views, &t.Category.ID, &t.Category.Name, &t.Category.Slug, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

// RecentArticles returns the newest articles with their authors
func (r *statsRepo) RecentArticles(ctx context.Context, limit int) ([]models.RecentArticle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.title, u.id, u.name, u.email, a.created_at
		FROM articles a
		JOIN users u ON u.id = a.author_id
		ORDER BY a.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := []models.RecentArticle{}
	for rows.Next() {
		var ra models.RecentArticle
		var name sql.NullString
		if err := rows.Scan(&ra.ID, &ra.Title, &ra.Author.ID, &name, &ra.Author.Email, &ra.CreatedAt); err != nil {
			return nil, err
		}
		if name.Valid {
			ra.Author.Name = &name.String
		}
		recent = append(recent, ra)
	}
	return recent, rows.Err()
}
