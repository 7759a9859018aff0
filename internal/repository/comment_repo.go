package repository

import (
	"context"
	"database/sql"

	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

const commentSelect = `
	SELECT cm.id, cm.content, cm.author_id, cm.article_id, cm.parent_id, cm.created_at,
		u.id, u.name, u.email
	FROM comments cm
	JOIN users u ON u.id = cm.author_id
`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var parentID, authorName sql.NullString
	err := row.Scan(
		&c.ID, &c.Content, &c.AuthorID, &c.ArticleID, &parentID, &c.CreatedAt,
		&c.Author.ID, &authorName, &c.Author.Email,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	if authorName.Valid {
		c.Author.Name = &authorName.String
	}
	return &c, nil
}

// ListByArticle returns the article's comments flat, oldest first
func (r *commentRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+` WHERE cm.article_id = $1 ORDER BY cm.created_at ASC, cm.id ASC`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, content, author_id, article_id, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.Content, comment.AuthorID, comment.ArticleID, comment.ParentID, comment.CreatedAt,
	)
	return mapError(err)
}

// Delete removes a comment; replies cascade
func (r *commentRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
