package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusInternalServerError},
		{name: "authentication required", err: auth.ErrAuthenticationRequired, expectedStatus: http.StatusUnauthorized},
		{name: "authentication failed", err: auth.ErrAuthenticationFailed, expectedStatus: http.StatusUnauthorized},
		{
			name:           "invalid stored token",
			err:            fmt.Errorf("failed to decode token: %w", auth.ErrInvalidToken),
			expectedStatus: http.StatusInternalServerError,
		},
		{name: "not found", err: store.ErrNotFound, expectedStatus: http.StatusNotFound},
		{
			name:           "wrapped post not found",
			err:            fmt.Errorf("failed to retrieve post: %w", store.ErrPostNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{name: "conflict", err: store.ErrTokenExists, expectedStatus: http.StatusConflict},
		{name: "domain validation", err: domain.ErrEmptyPostQuery, expectedStatus: http.StatusBadRequest},
		{name: "invalid filter", err: store.ErrInvalidFilter, expectedStatus: http.StatusBadRequest},
		{
			name:           "request validation",
			err:            shared.ValidateRequest(&PostRequest{}),
			expectedStatus: http.StatusBadRequest,
		},
		{name: "storage", err: store.ErrStorage, expectedStatus: http.StatusInternalServerError},
		{name: "unknown error", err: errors.New("unknown error"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{name: "nil error", err: nil, expectedMessage: "An unexpected error occurred"},
		{name: "authentication required", err: auth.ErrAuthenticationRequired, expectedMessage: "Authentication required"},
		{name: "authentication failed", err: auth.ErrAuthenticationFailed, expectedMessage: "Authentication failed"},
		{name: "post not found", err: store.ErrPostNotFound, expectedMessage: "Post not found"},
		{name: "client not found", err: store.ErrClientNotFound, expectedMessage: "Client not found"},
		{name: "generic not found", err: store.ErrNotFound, expectedMessage: "Resource not found"},
		{name: "token conflict", err: store.ErrTokenExists, expectedMessage: "Client with this token already exists"},
		{name: "generic conflict", err: store.ErrConflict, expectedMessage: "Resource already exists"},
		{
			name:            "domain validation",
			err:             fmt.Errorf("wrapped: %w", domain.ErrPostTitleTooLong),
			expectedMessage: "title must be at most 255 characters",
		},
		{
			name:            "request validation",
			err:             shared.ValidateRequest(&ClientRequest{Name: "n"}),
			expectedMessage: "Invalid token: required field",
		},
		{
			name:            "storage detail is hidden",
			err:             fmt.Errorf("%w: pq: relation \"posts\" does not exist", store.ErrStorage),
			expectedMessage: "An unexpected error occurred",
		},
		{
			name:            "invalid token is hidden",
			err:             auth.ErrInvalidToken,
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMessage, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("not a validator error")))
	assert.Equal(t, "Invalid title: required field", SanitizeValidationError(shared.ValidateRequest(&PostRequest{Content: "c"})))
}

func TestGetValidationTagMessage(t *testing.T) {
	assert.Equal(t, "required field", getValidationTagMessage("required"))
	assert.Equal(t, "too long", getValidationTagMessage("max"))
	assert.Equal(t, "too short", getValidationTagMessage("min"))
	assert.Equal(t, "validation failed", getValidationTagMessage("email"))
}
