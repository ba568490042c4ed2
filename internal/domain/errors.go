// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when a domain entity or request fails validation.
// Every *ValidationError unwraps to it.
var ErrValidation = errors.New("validation failed")

// ValidationError describes malformed input. Message is safe to show to API callers.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

// Unwrap returns ErrValidation so callers can test with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SafeMessage returns the message without the generic prefix.
func (e *ValidationError) SafeMessage() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}
