package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// Sentinel errors for AI dispatch outcomes.
var (
	// ErrNoCredential means no API key is configured (or no active key for
	// single-key operations). The UI prompts the user to add a key.
	ErrNoCredential = errors.New("no api credential configured")

	// ErrKeysExhausted means every credential in the pool failed with a
	// recoverable error. Wrapped with the last cause for diagnostics.
	ErrKeysExhausted = errors.New("all api credentials exhausted")

	// ErrCancelled means the caller cancelled the request. It is a distinct
	// "no result" outcome, not a failure.
	ErrCancelled = errors.New("request cancelled")

	// ErrDuplicateRequest means a request with the same id is still in flight.
	ErrDuplicateRequest = errors.New("duplicate request id")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
