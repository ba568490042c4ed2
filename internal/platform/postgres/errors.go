package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/quill-api/internal/store"
)

// SQLSTATE codes the repositories care about.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	notNullViolationCode    = "23502"
	stringTooLongCode       = "22001"
)

// MapError translates a driver error into a store error kind. Errors that
// already carry a kind pass through; anything unrecognised becomes
// store.ErrStorage so raw driver errors never leave this package.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrStorage),
		errors.Is(err, store.ErrInvalidFilter):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %v", store.ErrStorage, err)
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
	case foreignKeyViolationCode:
		return fmt.Errorf("%w: foreign key %s: %v", store.ErrStorage, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: column %s is required: %v", store.ErrStorage, pgErr.ColumnName, err)
	case stringTooLongCode:
		return fmt.Errorf("%w: value too long: %v", store.ErrStorage, err)
	default:
		return fmt.Errorf("%w: sqlstate %s: %v", store.ErrStorage, pgErr.Code, err)
	}
}

// IsUniqueViolation reports whether err wraps a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CheckRowsAffected returns notFound (or store.ErrNotFound when nil) if the
// statement touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("%w: nil result", store.ErrStorage)
	}

	n, err := result.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("%w: failed to get rows affected: %v", store.ErrStorage, err)
	case n > 0:
		return nil
	case notFound != nil:
		return notFound
	default:
		return store.ErrNotFound
	}
}
