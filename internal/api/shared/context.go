package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/phrazzld/quill-api/internal/domain"
)

// ContextKey is the type of request-scoped values set by middleware.
type ContextKey string

const (
	// ClientContextKey holds the *domain.Client resolved from the bearer credential.
	ClientContextKey ContextKey = "client"

	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// WithClient returns a copy of ctx carrying the authenticated client.
func WithClient(ctx context.Context, client *domain.Client) context.Context {
	return context.WithValue(ctx, ClientContextKey, client)
}

// ClientFromContext returns the authenticated client, if any.
func ClientFromContext(ctx context.Context) (*domain.Client, bool) {
	client, ok := ctx.Value(ClientContextKey).(*domain.Client)
	if !ok || client == nil {
		return nil, false
	}
	return client, true
}

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" if none is set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 32 hex characters. If crypto/rand fails it falls
// back to a time-derived ID rather than a static value.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "time-based generation")
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func generateFallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint32(b[8:12], uint32(now.Nanosecond()))
	binary.BigEndian.PutUint32(b[12:16], uint32(now.Unix()))
	return hex.EncodeToString(b)
}
