package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
)

// DefaultPageSize is used when a caller asks for a non-positive limit.
const DefaultPageSize = 10

// Repository implements store.Repository for any entity described by a
// store.Schema. It holds no entity state; every call runs against either the
// pool or the transaction it was bound to with WithTx.
type Repository[T any] struct {
	pool   *sql.DB
	tx     *sql.Tx
	schema *store.Schema[T]
	logger *slog.Logger
}

// NewRepository creates a repository for schema backed by db.
// If logger is nil, a default logger will be used.
func NewRepository[T any](db *sql.DB, schema *store.Schema[T], logger *slog.Logger) *Repository[T] {
	if db == nil {
		panic("db cannot be nil")
	}
	if schema == nil {
		panic("schema cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Repository[T]{
		pool:   db,
		schema: schema,
		logger: logger.With(slog.String("component", schema.Entity+"_store")),
	}
}

// WithTx implements store.Repository.WithTx.
func (r *Repository[T]) WithTx(tx *sql.Tx) store.Repository[T] {
	return r.bind(tx)
}

func (r *Repository[T]) bind(tx *sql.Tx) *Repository[T] {
	return &Repository[T]{
		pool:   r.pool,
		tx:     tx,
		schema: r.schema,
		logger: r.logger,
	}
}

// db returns the handle reads execute against.
func (r *Repository[T]) db() store.DBTX {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// atomic runs fn in the bound transaction, or in a fresh one when unbound,
// so that a failed write never leaves partial state behind.
func (r *Repository[T]) atomic(ctx context.Context, fn func(db store.DBTX) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return store.RunInTransaction(ctx, r.pool, func(ctx context.Context, tx *sql.Tx) error {
		return fn(tx)
	})
}

// mapError translates err into the schema's entity-specific error kinds.
func (r *Repository[T]) mapError(err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", r.schema.ConflictError(), err)
	}
	return MapError(err)
}

func (r *Repository[T]) selectClause() string {
	return "SELECT " + strings.Join(r.schema.ColumnNames(), ", ") + " FROM " + r.schema.Table
}

func (r *Repository[T]) orderClause() string {
	return " ORDER BY " + store.CreatedAtField + ", " + store.IDField
}

// updateStamp is the updated_at expression. clock_timestamp() matches the
// created_at column default; now() would be the transaction start time.
func (r *Repository[T]) updateStamp() string {
	if r.schema.Has(store.CreatedAtField) {
		return "GREATEST(clock_timestamp(), " + store.CreatedAtField + ")"
	}
	return "clock_timestamp()"
}

func (r *Repository[T]) returningClause() string {
	return " RETURNING " + strings.Join(r.schema.ColumnNames(), ", ")
}

func (r *Repository[T]) query(ctx context.Context, db store.DBTX, query string, args []any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entities := make([]*T, 0)
	for rows.Next() {
		entity := r.schema.New()
		if err := rows.Scan(r.schema.Targets(entity)...); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *Repository[T]) queryOne(ctx context.Context, db store.DBTX, query string, args []any) (*T, error) {
	entity := r.schema.New()
	if err := db.QueryRowContext(ctx, query, args...).Scan(r.schema.Targets(entity)...); err != nil {
		return nil, err
	}
	return entity, nil
}

// GetMultiPaginated implements store.Repository.GetMultiPaginated.
func (r *Repository[T]) GetMultiPaginated(
	ctx context.Context,
	offset, limit int,
	filter store.Filter,
) ([]*T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var b queryBuilder
	q := r.selectClause() + b.where(filter) + r.orderClause()
	q += " LIMIT " + b.arg(limit) + " OFFSET " + b.arg(offset)

	entities, err := r.query(ctx, r.db(), q, b.args)
	if err != nil {
		log.Error("failed to list entities",
			slog.String("error", err.Error()),
			slog.Int("offset", offset),
			slog.Int("limit", limit))
		return nil, r.mapError(err)
	}

	log.Debug("listed entities",
		slog.Int("count", len(entities)),
		slog.Int("offset", offset),
		slog.Int("limit", limit))
	return entities, nil
}

// GetByID implements store.Repository.GetByID.
func (r *Repository[T]) GetByID(ctx context.Context, id uuid.UUID, filter store.Filter) (*T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}

	var b queryBuilder
	q := r.selectClause() + b.where(store.And(store.Eq(store.IDField, id), filter))

	entity, err := r.queryOne(ctx, r.db(), q, b.args)
	if err != nil {
		if IsNotFound(err) {
			log.Debug("entity not found", slog.String("id", id.String()))
			return nil, r.schema.NotFoundError()
		}
		log.Error("failed to get entity by ID",
			slog.String("error", err.Error()),
			slog.String("id", id.String()))
		return nil, r.mapError(err)
	}

	return entity, nil
}

// GetByFilter implements store.Repository.GetByFilter.
func (r *Repository[T]) GetByFilter(ctx context.Context, filter store.Filter) ([]*T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}

	var b queryBuilder
	q := r.selectClause() + b.where(filter) + r.orderClause()

	entities, err := r.query(ctx, r.db(), q, b.args)
	if err != nil {
		log.Error("failed to get entities by filter", slog.String("error", err.Error()))
		return nil, r.mapError(err)
	}
	return entities, nil
}

// GetByFilterOneOrNone implements store.Repository.GetByFilterOneOrNone.
// At most two rows are fetched; a second row is enough to reject the match.
func (r *Repository[T]) GetByFilterOneOrNone(ctx context.Context, filter store.Filter) (*T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}

	var b queryBuilder
	q := r.selectClause() + b.where(filter) + r.orderClause() + " LIMIT 2"

	entities, err := r.query(ctx, r.db(), q, b.args)
	if err != nil {
		log.Error("failed to get entity by filter", slog.String("error", err.Error()))
		return nil, r.mapError(err)
	}

	if len(entities) != 1 {
		if len(entities) > 1 {
			log.Warn("filter matched more than one entity")
		}
		return nil, r.schema.NotFoundError()
	}
	return entities[0], nil
}

func (r *Repository[T]) insert(ctx context.Context, db store.DBTX, entity *T) (*T, error) {
	cols := r.schema.Insertable()
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))

	var b queryBuilder
	for i, c := range cols {
		names[i] = c.Name
		placeholders[i] = b.arg(c.Value(entity))
	}

	q := "INSERT INTO " + r.schema.Table +
		" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")" +
		r.returningClause()

	return r.queryOne(ctx, db, q, b.args)
}

// Create implements store.Repository.Create.
func (r *Repository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)
	id := r.schema.ID(entity)

	var created *T
	err := r.atomic(ctx, func(db store.DBTX) error {
		var err error
		created, err = r.insert(ctx, db, entity)
		return err
	})
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("uniqueness conflict during create", slog.String("id", id.String()))
		} else {
			log.Error("failed to create entity",
				slog.String("error", err.Error()),
				slog.String("id", id.String()))
		}
		return nil, r.mapError(err)
	}

	log.Info("entity created successfully", slog.String("id", id.String()))
	return created, nil
}

// CreateAll implements store.Repository.CreateAll.
func (r *Repository[T]) CreateAll(ctx context.Context, entities []*T) ([]*T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	created := make([]*T, 0, len(entities))
	err := r.atomic(ctx, func(db store.DBTX) error {
		for _, entity := range entities {
			row, err := r.insert(ctx, db, entity)
			if err != nil {
				return err
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create entities",
			slog.String("error", err.Error()),
			slog.Int("count", len(entities)))
		return nil, r.mapError(err)
	}

	log.Info("entities created successfully", slog.Int("count", len(created)))
	return created, nil
}

// Update implements store.Repository.Update. Matching, applying and
// re-stamping happen in one statement, so an unmatched id or filter leaves
// the row untouched.
func (r *Repository[T]) Update(
	ctx context.Context,
	id uuid.UUID,
	changes store.Changes,
	filter store.Filter,
) (*T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}
	if err := r.schema.ValidateChanges(changes); err != nil {
		return nil, err
	}

	var b queryBuilder
	fields := changes.Fields()
	assignments := make([]string, 0, len(fields)+1)
	for _, name := range fields {
		assignments = append(assignments, name+" = "+b.arg(changes[name]))
	}
	if r.schema.Has(store.UpdatedAtField) {
		assignments = append(assignments, store.UpdatedAtField+" = "+r.updateStamp())
	}

	q := "UPDATE " + r.schema.Table + " SET " + strings.Join(assignments, ", ") +
		b.where(store.And(store.Eq(store.IDField, id), filter)) +
		r.returningClause()

	var updated *T
	err := r.atomic(ctx, func(db store.DBTX) error {
		var err error
		updated, err = r.queryOne(ctx, db, q, b.args)
		return err
	})
	if err != nil {
		if IsNotFound(err) {
			log.Debug("entity not found for update", slog.String("id", id.String()))
			return nil, r.schema.NotFoundError()
		}
		log.Error("failed to update entity",
			slog.String("error", err.Error()),
			slog.String("id", id.String()))
		return nil, r.mapError(err)
	}

	log.Info("entity updated successfully",
		slog.String("id", id.String()),
		slog.Any("fields", fields))
	return updated, nil
}

// Delete implements store.Repository.Delete.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID, filter store.Filter) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if err := r.schema.ValidateFilter(filter); err != nil {
		return err
	}

	var b queryBuilder
	q := "DELETE FROM " + r.schema.Table + b.where(store.And(store.Eq(store.IDField, id), filter))

	err := r.atomic(ctx, func(db store.DBTX) error {
		result, err := db.ExecContext(ctx, q, b.args...)
		if err != nil {
			return err
		}
		return CheckRowsAffected(result, r.schema.NotFoundError())
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("entity not found for deletion", slog.String("id", id.String()))
			return err
		}
		log.Error("failed to delete entity",
			slog.String("error", err.Error()),
			slog.String("id", id.String()))
		return r.mapError(err)
	}

	log.Info("entity deleted successfully", slog.String("id", id.String()))
	return nil
}

// IsNotFound checks if the given error represents a "not found" scenario.
// This handles both sql.ErrNoRows and errors that are or wrap store.ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || store.IsNotFoundError(err)
}

// Ensure Repository implements store.Repository.
var (
	_ store.ClientRepository = (*Repository[domain.Client])(nil)
	_ store.PostRepository   = (*Repository[domain.Post])(nil)
)
