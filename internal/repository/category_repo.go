package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM articles a WHERE a.category_id = c.id)
	FROM categories c
`

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt, &c.ArticleCount); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories, newest first, with article counts
func (r *categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+` ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) getOne(ctx context.Context, where string, arg string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a category by ID
func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.getOne(ctx, ` WHERE c.id = $1`, id)
}

// GetBySlug retrieves a category by slug
func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.getOne(ctx, ` WHERE c.slug = $1`, slug)
}

// Create inserts a new category; a taken slug yields ErrDuplicate
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Slug, category.CreatedAt, category.UpdatedAt,
	)
	return mapError(err)
}

// Update renames a category
func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, slug = $3, updated_at = $4 WHERE id = $1`,
		category.ID, category.Name, category.Slug, category.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a category; one still holding articles yields ErrInUse
func (r *categoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
