package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/quill-api/internal/config"
)

// Setup builds the process-wide JSON logger from cfg, tags every record with
// the service name and API version, and installs it as slog's default.
func Setup(cfg *config.Config) (*slog.Logger, error) {
	return setup(cfg, os.Stdout)
}

func setup(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	level, ok := ParseLevel(cfg.Server.LogLevel)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", cfg.Server.LogLevel)
	}

	l := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})).With(
		slog.String("service", cfg.API.ServiceName),
		slog.String("api_version", cfg.API.Version),
	)
	slog.SetDefault(l)
	return l, nil
}

// ParseLevel converts a configured level name into a slog.Level.
// Unknown names resolve to info and report ok=false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
