package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/newsroom-api/internal/models"
)

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex      = regexp.MustCompile(`^[a-z0-9_]+(?:-[a-z0-9_]+)*$`)
	nonWordRegex   = regexp.MustCompile(`[^a-z0-9_]+`)
	fileNameFilter = regexp.MustCompile(`[^a-zA-Z0-9.]`)
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Slugify derives a category slug: lowercase, every run of non-word
// characters becomes one hyphen, no leading or trailing hyphen.
func Slugify(name string) string {
	slug := nonWordRegex.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// IsSlug reports whether s is already in slug form
func IsSlug(s string) bool {
	return slugRegex.MatchString(s)
}

// SanitizeFileName strips everything but ASCII letters, digits and dots
func SanitizeFileName(name string) string {
	return fileNameFilter.ReplaceAllString(name, "")
}

// ValidateArticle validates an article payload
func ValidateArticle(in *models.ArticleInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(in.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(in.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}
	if in.CategoryID == "" {
		errors = append(errors, ValidationError{Field: "categoryId", Message: "categoryId is required"})
	} else if !isValidUUID(in.CategoryID) {
		errors = append(errors, ValidationError{Field: "categoryId", Message: "invalid UUID format", Value: in.CategoryID})
	}

	return errors
}

// ValidateCategory validates a category payload
func ValidateCategory(in *models.CategoryInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(in.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "Name is required"})
	} else if Slugify(in.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "Name must contain letters or digits", Value: in.Name})
	}

	return errors
}

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// ValidateUser validates a user payload. Password is only required on create.
func ValidateUser(in *models.UserInput, requirePassword bool) []ValidationError {
	var errors []ValidationError

	if in.Email == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(in.Email) {
		errors = append(errors, ValidationError{Field: "email", Message: "invalid email format", Value: in.Email})
	}

	if requirePassword && in.Password == "" {
		errors = append(errors, ValidationError{Field: "password", Message: "password is required"})
	} else if len(in.Password) > MaxPasswordBytes {
		errors = append(errors, ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes),
		})
	}

	if in.Role != "" && !models.ValidRoles[models.Role(in.Role)] {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "invalid role, must be one of: USER, ADMIN",
			Value:   in.Role,
		})
	}

	return errors
}

// ValidateComment validates a comment payload. Content is checked after trimming.
func ValidateComment(in *models.CommentInput) []ValidationError {
	var errors []ValidationError

	if in.Content == "" || in.ArticleID == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "Content and news ID are required"})
		return errors
	}
	if strings.TrimSpace(in.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "Comment cannot be empty"})
	}
	if !isValidUUID(in.ArticleID) {
		errors = append(errors, ValidationError{Field: "newsId", Message: "invalid UUID format", Value: in.ArticleID})
	}
	if in.ParentID != "" && !isValidUUID(in.ParentID) {
		errors = append(errors, ValidationError{Field: "parentId", Message: "invalid UUID format", Value: in.ParentID})
	}

	return errors
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(s string) bool {
	return isValidUUID(s)
}

// isValidUUID checks if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
