package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/quill-api/internal/config"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/platform/memory"
	"github.com/phrazzld/quill-api/internal/platform/metrics"
	"github.com/phrazzld/quill-api/internal/platform/postgres"
	"github.com/phrazzld/quill-api/internal/service"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB // nil for the memory backend
	metrics *metrics.Metrics

	// Repositories
	clientStore store.ClientRepository
	postStore   store.StatsRepository
	transactor  store.Transactor

	// Services
	codec         auth.TokenCodec
	authenticator *auth.ClientAuthenticator
	masterKeys    *auth.MasterKeyGuard
	clientService service.ClientService
	postService   service.PostService
}

// newApplication wires every dependency for cfg. db must be open when the
// postgres driver is configured and is ignored otherwise.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	switch cfg.Database.Driver {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres driver requires an open database connection")
		}
		app.clientStore = postgres.NewRepository(db, store.ClientSchema, logger)
		app.postStore = postgres.NewStatsStore(db, logger)
		app.transactor = store.NewSQLTransactor(db)
	case "memory":
		mem := memory.New(logger)
		app.clientStore = mem.Clients()
		app.postStore = mem.Posts()
		app.transactor = mem
		logger.Warn("using in-memory storage; data will not survive a restart")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	var err error
	app.codec, err = auth.NewTokenCodec(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	app.masterKeys, err = auth.NewMasterKeyGuard(cfg.Auth.MasterKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize master key guard: %w", err)
	}

	app.authenticator = auth.NewClientAuthenticator(app.codec, app.clientStore, app.transactor, logger)
	app.clientService = service.NewClientService(app.clientStore, app.codec, app.transactor, logger)
	app.postService = service.NewPostService(app.postStore, app.transactor, logger)

	logger.Info("Application initialized successfully",
		slog.String("driver", cfg.Database.Driver),
		slog.Int("master_keys", len(cfg.Auth.MasterKeys)))
	return app, nil
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("Application shutdown completed")
}

// runServe loads configuration, opens storage and serves until ctx is done.
func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("driver", cfg.Database.Driver))

	var db *sql.DB
	if cfg.Database.Driver == "postgres" {
		db, err = setupAppDatabase(ctx, cfg, log)
		if err != nil {
			return err
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
