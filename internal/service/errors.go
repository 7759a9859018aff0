package service

import (
	"errors"

	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/validation"
)

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrStore        = errors.New("store failure")
	ErrStorage      = errors.New("storage failure")
)

// Error is a service failure carrying a message safe to show to the caller
type Error struct {
	Kind    error
	Message string
	Fields  []validation.ValidationError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Message returns the caller-facing message of err
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "Internal server error"
}

// Fields returns the field-level validation errors carried by err, if any
func Fields(err error) []validation.ValidationError {
	var se *Error
	if errors.As(err, &se) {
		return se.Fields
	}
	return nil
}

func invalid(message string, fields ...validation.ValidationError) error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

func unauthorized(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

func notFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func storeFailure(message string, err error) error {
	return &Error{Kind: ErrStore, Message: message, Err: err}
}

func storageFailure(message string, err error) error {
	return &Error{Kind: ErrStorage, Message: message, Err: err}
}

// requireUser rejects anonymous callers
func requireUser(actor *models.Identity, message string) error {
	if actor == nil || actor.UserID == "" {
		return unauthorized(message)
	}
	return nil
}

// requireAdmin rejects anonymous callers and callers without the admin role
func requireAdmin(actor *models.Identity) error {
	if err := requireUser(actor, "Unauthorized"); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return forbidden("Forbidden")
	}
	return nil
}
