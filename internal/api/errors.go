package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Every error
// kind has exactly one status; anything unrecognised is a 500.
func MapErrorToStatusCode(err error) int {
	var validationErrors validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusInternalServerError

	case errors.Is(err, auth.ErrAuthenticationRequired),
		errors.Is(err, auth.ErrAuthenticationFailed):
		return http.StatusUnauthorized

	// A stored token the codec cannot read means the key changed under
	// existing data; the caller cannot fix that.
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusInternalServerError

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidFilter),
		errors.As(err, &validationErrors):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message for err that is safe to show to API
// callers. It never includes storage detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		validationErr    *domain.ValidationError
		validationErrors validator.ValidationErrors
	)

	switch {
	case errors.Is(err, auth.ErrAuthenticationRequired):
		return "Authentication required"
	case errors.Is(err, auth.ErrAuthenticationFailed):
		return "Authentication failed"

	case errors.Is(err, store.ErrPostNotFound):
		return "Post not found"
	case errors.Is(err, store.ErrClientNotFound):
		return "Client not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrTokenExists):
		return "Client with this token already exists"
	case errors.Is(err, store.ErrConflict):
		return "Resource already exists"

	case errors.As(err, &validationErr):
		return validationErr.SafeMessage()
	case errors.As(err, &validationErrors):
		return SanitizeValidationError(err)
	case errors.Is(err, store.ErrInvalidFilter):
		return "Invalid query"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns request validation failures into a message
// naming the first offending field, without echoing the rejected value.
func SanitizeValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Validation error"
	}

	fe := validationErrors[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}
