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
)

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	categories repository.CategoryRepository
	audit      AuditLog
	log        zerolog.Logger
}

func newCategoryService(categories repository.CategoryRepository, audit AuditLog, log zerolog.Logger) *categoryService {
	return &categoryService{
		categories: categories,
		audit:      audit,
		log:        log.With().Str("service", "category").Logger(),
	}
}

// List returns all categories, newest first
func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list categories")
		return nil, storeFailure("Failed to load categories", err)
	}
	return categories, nil
}

// Get returns a category, nil when missing or on failure
func (s *categoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	if !validation.IsValidUUID(id) {
		return nil, nil
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("category_id", id).Msg("Failed to load category")
		return nil, nil
	}
	return category, nil
}

// GetBySlug returns a category by slug, nil when missing or on failure
func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		s.log.Error().Err(err).Str("slug", slug).Msg("Failed to load category")
		return nil, nil
	}
	return category, nil
}

// Create adds a category whose slug is derived from its name
func (s *categoryService) Create(ctx context.Context, actor *models.Identity, in *models.CategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if errs := validation.ValidateCategory(in); len(errs) > 0 {
		return nil, invalid(errs[0].Message, errs...)
	}

	now := time.Now().UTC()
	category := &models.Category{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Slug:      validation.Slugify(in.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("A category with this name already exists", validation.ValidationError{
				Field: "name", Message: "slug already in use", Value: category.Slug,
			})
		}
		s.log.Error().Err(err).Msg("Failed to create category")
		return nil, storeFailure("Failed to create category", err)
	}

	s.audit.Append(ctx, models.LogInfo, "Category created: "+category.Name,
		map[string]string{"categoryId": category.ID, "slug": category.Slug}, actor)

	return category, nil
}

// Update renames a category and re-derives its slug
func (s *categoryService) Update(ctx context.Context, actor *models.Identity, id string, in *models.CategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !validation.IsValidUUID(id) {
		return nil, notFound("Category not found")
	}
	if errs := validation.ValidateCategory(in); len(errs) > 0 {
		return nil, invalid(errs[0].Message, errs...)
	}

	category := &models.Category{
		ID:   id,
		Name: strings.TrimSpace(in.Name),
		Slug: validation.Slugify(in.Name),
	}

	if err := s.categories.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, notFound("Category not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, invalid("A category with this name already exists", validation.ValidationError{
				Field: "name", Message: "slug already in use", Value: category.Slug,
			})
		}
		s.log.Error().Err(err).Str("category_id", id).Msg("Failed to update category")
		return nil, storeFailure("Failed to update category", err)
	}

	s.audit.Append(ctx, models.LogInfo, "Category updated: "+category.Name,
		map[string]string{"categoryId": id, "slug": category.Slug}, actor)

	return category, nil
}

// Delete removes a category. Categories that still hold articles cannot be deleted.
func (s *categoryService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !validation.IsValidUUID(id) {
		return notFound("Category not found")
	}

	deleted, err := s.categories.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("category_id", id).Msg("Failed to delete category")
		return storeFailure("Failed to delete category", err)
	}
	if !deleted {
		return notFound("Category not found")
	}

	s.audit.Append(ctx, models.LogInfo, "Category deleted", map[string]string{"categoryId": id}, actor)
	return nil
}
