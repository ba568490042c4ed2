package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
)

// Pagination bounds for list and search endpoints.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// getClientFromContext returns the authenticated client placed in the
// context by the bearer middleware.
func getClientFromContext(r *http.Request) (*domain.Client, bool) {
	client, ok := shared.ClientFromContext(r.Context())
	if !ok || client.ID == uuid.Nil {
		return nil, false
	}
	return client, true
}

// getQueryUUID parses the named query parameter as a UUID.
func getQueryUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(name, "is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a valid UUID")
	}
	return id, nil
}

// getPagination reads offset and limit from the query string. limit
// defaults to DefaultPageLimit and must lie in [1, MaxPageLimit]; offset
// defaults to 0 and must not be negative.
func getPagination(r *http.Request) (offset, limit int, err error) {
	query := r.URL.Query()

	limit = DefaultPageLimit
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxPageLimit {
			return 0, 0, domain.NewValidationError("limit", "must be an integer between 1 and 100")
		}
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, domain.NewValidationError("offset", "must be a non-negative integer")
		}
	}

	return offset, limit, nil
}

// decodeRequest decodes the JSON body into v and validates it. A body that
// does not decode is reported as a validation error.
func decodeRequest(r *http.Request, v interface{}) error {
	if err := shared.DecodeJSON(r, v); err != nil {
		logger.FromContext(r.Context()).Debug("failed to decode request body",
			slog.String("error", err.Error()))
		return domain.NewValidationError("", "invalid request format")
	}
	return shared.ValidateRequest(v)
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted detail. fallbackMessage, when set, replaces the generic message
// of a 500 response.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
