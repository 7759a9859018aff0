package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/models"
)

const userSelect = `
	SELECT u.id, u.email, u.name, u.password_hash, u.role, u.created_at, u.updated_at,
		(SELECT COUNT(*) FROM articles a WHERE a.author_id = u.id)
	FROM users u
`

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var name sql.NullString
	err := row.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.ArticleCount)
	if err != nil {
		return nil, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	return &u, nil
}

// List returns all users, newest first, with their article counts
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+` ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) getOne(ctx context.Context, where string, arg string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, ` WHERE u.id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, ` WHERE u.email = $1`, email)
}

// Create inserts a new user; a taken email yields ErrDuplicate
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role,
		user.CreatedAt, user.UpdatedAt,
	)
	return mapError(err)
}

// Upsert inserts or updates a user by email
func (r *userRepo) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role,
		user.CreatedAt, time.Now().UTC(),
	).Scan(&user.ID)
}

// Update overwrites name, email, role and password hash
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = $2, name = $3, password_hash = $4, role = $5, updated_at = $6 WHERE id = $1`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role, user.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a user; one still authoring articles yields ErrInUse
func (r *userRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
