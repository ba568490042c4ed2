package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/quill-api/internal/platform/logger"
)

// DBTX is the statement surface shared by *sql.DB and *sql.Tx. SQL
// repositories run against whichever one is active for the call.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFn is a unit of work. Returning nil commits it; returning an error rolls
// it back. Backends without SQL transactions pass a nil tx.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// Transactor runs a unit of work atomically.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn TxFn) error
}

// SQLTransactor runs units of work in database/sql transactions.
type SQLTransactor struct {
	db *sql.DB
}

// NewSQLTransactor creates a Transactor backed by db.
func NewSQLTransactor(db *sql.DB) *SQLTransactor {
	return &SQLTransactor{db: db}
}

// RunInTransaction implements Transactor.
func (t *SQLTransactor) RunInTransaction(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, t.db, fn)
}

// RunInTransaction runs fn inside a transaction on db. Errors from fn come back
// unchanged once the rollback succeeds; begin, commit and rollback failures
// wrap ErrStorage. A panic in fn rolls back and is re-raised.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrStorage, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = rollback(log, tx, slog.Any("panic", p))
			// ALLOW-PANIC: re-raised once the transaction is rolled back
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := rollback(log, tx, slog.String("cause", err.Error())); rbErr != nil {
			return fmt.Errorf("%w: error rolling back transaction: %v (original error: %w)", ErrStorage, rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrStorage, err)
	}
	return nil
}

func rollback(log *slog.Logger, tx *sql.Tx, cause slog.Attr) error {
	if err := tx.Rollback(); err != nil {
		log.Error("failed to roll back transaction", slog.String("error", err.Error()), cause)
		return err
	}
	log.Debug("transaction rolled back", cause)
	return nil
}
