package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/service/auth"
)

// Guard names reported to a FailureRecorder.
const (
	GuardBearer    = "bearer"
	GuardMasterKey = "master_key"
)

// Authenticator resolves a bearer credential to the client that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*domain.Client, error)
}

// MasterKeyChecker decides whether a presented master key is whitelisted.
type MasterKeyChecker interface {
	Check(presented string) error
}

// FailureRecorder is notified of every rejected request.
type FailureRecorder interface {
	RecordAuthFailure(guard, reason string)
}

// AuthMiddleware guards routes with either a client bearer credential or a
// whitelisted master key.
type AuthMiddleware struct {
	authenticator   Authenticator
	masterKeys      MasterKeyChecker
	masterKeyHeader string
	failures        FailureRecorder
	logger          *slog.Logger
}

// Option configures an AuthMiddleware.
type Option func(*AuthMiddleware)

// WithFailureRecorder reports rejected requests to r.
func WithFailureRecorder(r FailureRecorder) Option {
	return func(m *AuthMiddleware) {
		m.failures = r
	}
}

// WithLogger sets the fallback logger used when the request carries none.
func WithLogger(l *slog.Logger) Option {
	return func(m *AuthMiddleware) {
		if l != nil {
			m.logger = l.With(slog.String("component", "auth_middleware"))
		}
	}
}

// NewAuthMiddleware creates an AuthMiddleware. masterKeyHeader names the
// request header carrying the master key.
func NewAuthMiddleware(
	authenticator Authenticator,
	masterKeys MasterKeyChecker,
	masterKeyHeader string,
	opts ...Option,
) *AuthMiddleware {
	m := &AuthMiddleware{
		authenticator:   authenticator,
		masterKeys:      masterKeys,
		masterKeyHeader: masterKeyHeader,
		logger:          slog.Default().With(slog.String("component", "auth_middleware")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RequireClient resolves the bearer credential in the Authorization header
// and adds the owning client to the request context. Requests without a
// resolvable client never reach next.
func (m *AuthMiddleware) RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential, err := bearerCredential(r)
		if err != nil {
			m.reject(w, r, GuardBearer, err)
			return
		}

		client, err := m.authenticator.Authenticate(r.Context(), credential)
		if err != nil {
			m.reject(w, r, GuardBearer, err)
			return
		}

		ctx := shared.WithClient(r.Context(), client)
		log := logger.FromContextOrDefault(ctx, m.logger).With(slog.String("client_id", client.ID.String()))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireMasterKey admits only requests whose master key header holds a
// whitelisted key. It grants no per-record scoping.
func (m *AuthMiddleware) RequireMasterKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.masterKeys.Check(r.Header.Get(m.masterKeyHeader)); err != nil {
			m.reject(w, r, GuardMasterKey, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerCredential extracts the credential from "Authorization: Bearer <x>".
// The scheme is matched case-insensitively.
func bearerCredential(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", auth.ErrAuthenticationRequired
	}

	scheme, credential, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", auth.ErrAuthenticationFailed
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", auth.ErrAuthenticationRequired
	}
	return credential, nil
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, guard string, err error) {
	var (
		status  = http.StatusUnauthorized
		message string
		reason  string
	)
	switch {
	case errors.Is(err, auth.ErrAuthenticationRequired):
		message, reason = "Authentication required", "required"
	case errors.Is(err, auth.ErrAuthenticationFailed):
		message, reason = "Authentication failed", "failed"
	default:
		status, message, reason = http.StatusInternalServerError, "Authentication error", "error"
	}

	if m.failures != nil {
		m.failures.RecordAuthFailure(guard, reason)
	}
	if status == http.StatusUnauthorized && guard == GuardBearer {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, shared.WithElevatedLogLevel())
}

// GetClient returns the client placed in the request context by RequireClient.
func GetClient(r *http.Request) (*domain.Client, bool) {
	return shared.ClientFromContext(r.Context())
}
