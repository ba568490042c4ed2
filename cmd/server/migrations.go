package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/quill-api/internal/config"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// Migration subcommands.
const (
	migrateUp      = "up"
	migrateDown    = "down"
	migrateStatus  = "status"
	migrateVersion = "version"
)

// slogGooseLogger adapts goose's printf-style logger to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) log() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log().Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log().Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

// runMigrate loads configuration, connects to postgres and runs command.
func runMigrate(ctx context.Context, command string, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
	}

	log, err := logger.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	return executeMigration(ctx, db, command, verbose, log)
}

// executeMigration runs a goose command against the embedded migrations.
func executeMigration(ctx context.Context, db *sql.DB, command string, verbose bool, log *slog.Logger) error {
	switch command {
	case migrateUp, migrateDown, migrateStatus, migrateVersion:
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	log = log.With(slog.String("component", "migrations"), slog.String("command", command))

	goose.SetBaseFS(postgres.Migrations)
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetVerbose(verbose)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	var err error
	switch command {
	case migrateUp:
		err = goose.UpContext(ctx, db, postgres.MigrationsDir)
	case migrateDown:
		err = goose.DownContext(ctx, db, postgres.MigrationsDir)
	case migrateStatus:
		err = goose.StatusContext(ctx, db, postgres.MigrationsDir)
	case migrateVersion:
		var version int64
		version, err = goose.GetDBVersionContext(ctx, db)
		if err == nil {
			log.Info("current migration version", slog.Int64("version", version))
		}
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration command completed")
	return nil
}
