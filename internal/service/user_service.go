package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for password hashes
const BcryptCost = 10

// userService is the concrete implementation of UserService
type userService struct {
	users repository.UserRepository
	audit AuditLog
	cost  int
	log   zerolog.Logger
}

func newUserService(users repository.UserRepository, audit AuditLog, log zerolog.Logger) *userService {
	return &userService{
		users: users,
		audit: audit,
		cost:  BcryptCost,
		log:   log.With().Str("service", "user").Logger(),
	}
}

// List returns all users, newest first
func (s *userService) List(ctx context.Context, actor *models.Identity) ([]*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list users")
		return nil, storeFailure("Failed to load users", err)
	}
	return users, nil
}

// Get returns a user, nil when missing or on failure
func (s *userService) Get(ctx context.Context, actor *models.Identity, id string) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !validation.IsValidUUID(id) {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id).Msg("Failed to load user")
		return nil, nil
	}
	return user, nil
}

// Create adds a user with a hashed password. Role defaults to USER.
func (s *userService) Create(ctx context.Context, actor *models.Identity, in *models.UserInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, invalid("Email and password are required")
	}
	if errs := validation.ValidateUser(in, true); len(errs) > 0 {
		return nil, invalid(errs[0].Message, errs...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, storeFailure("Failed to create user", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        strings.TrimSpace(in.Email),
		Name:         optionalString(in.Name),
		PasswordHash: string(hash),
		Role:         roleOrDefault(in.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("Failed to create user. Email might already exist.")
		}
		s.log.Error().Err(err).Str("email", user.Email).Msg("Failed to create user")
		return nil, storeFailure("Failed to create user. Email might already exist.", err)
	}

	s.audit.Append(ctx, models.LogInfo, "User created: "+user.Email,
		map[string]string{"userId": user.ID, "role": string(user.Role)}, actor)

	return user, nil
}

// Update edits a user. The password is re-hashed only when a new one is given.
func (s *userService) Update(ctx context.Context, actor *models.Identity, id string, in *models.UserInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !validation.IsValidUUID(id) {
		return nil, notFound("User not found")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, invalid("Email is required")
	}
	if errs := validation.ValidateUser(in, false); len(errs) > 0 {
		return nil, invalid(errs[0].Message, errs...)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeFailure("Failed to update user", err)
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	user.Email = strings.TrimSpace(in.Email)
	user.Name = optionalString(in.Name)
	user.Role = roleOrDefault(in.Role)
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return nil, storeFailure("Failed to update user", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, notFound("User not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, invalid("Email is already in use")
		}
		s.log.Error().Err(err).Str("user_id", id).Msg("Failed to update user")
		return nil, storeFailure("Failed to update user", err)
	}

	s.audit.Append(ctx, models.LogInfo, "User updated: "+user.Email, map[string]string{"userId": id}, actor)
	return user, nil
}

// Delete removes a user. Admins cannot delete their own account.
func (s *userService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID == id {
		return forbidden("Cannot delete your own account")
	}
	if !validation.IsValidUUID(id) {
		return notFound("User not found")
	}

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		return storeFailure("Failed to delete user. User might have associated news articles.", err)
	}
	if !deleted {
		return notFound("User not found")
	}

	s.audit.Append(ctx, models.LogInfo, "User deleted", map[string]string{"userId": id}, actor)
	return nil
}

// Authenticate checks credentials and returns the identity of the user
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	if email == "" || password == "" {
		return nil, unauthorized("Invalid credentials")
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load user for login")
		return nil, storeFailure("Failed to sign in", err)
	}
	// externally authenticated accounts have no password
	if user == nil || user.PasswordHash == "" {
		return nil, unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, unauthorized("Invalid credentials")
	}

	id := &models.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}
	if user.Name != nil {
		id.Name = *user.Name
	}
	return id, nil
}

func roleOrDefault(role string) models.Role {
	if role == "" {
		return models.RoleUser
	}
	return models.Role(role)
}
