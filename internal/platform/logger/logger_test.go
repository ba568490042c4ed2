package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/phrazzld/quill-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ParseLevel(tt.name)
			assert.Equal(t, tt.want, level)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestSetupWritesJSONAtConfiguredLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := setup(&config.Config{
		Server: config.ServerConfig{LogLevel: "warn"},
		API:    config.APIConfig{Version: "v1", ServiceName: "quill-api"},
	}, &buf)
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", "client_id", "abc")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "abc", entry["client_id"])
	assert.Equal(t, "quill-api", entry["service"])
	assert.Equal(t, "v1", entry["api_version"])
	assert.Same(t, l, slog.Default())
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := setup(&config.Config{Server: config.ServerConfig{LogLevel: "loud"}}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "loud")
}

func TestFromContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	scoped := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, FromContextOrDefault(WithLogger(context.Background(), scoped), fallback))
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	assert.Same(t, scoped, FromContext(WithLogger(context.Background(), scoped)))
}
