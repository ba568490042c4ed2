package memory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
)

// DefaultPageSize is used when a caller asks for a non-positive limit.
const DefaultPageSize = 10

// Repository implements store.Repository over a slice kept in insertion
// order. Callers always receive copies, never pointers into the table.
type Repository[T any] struct {
	store     *Store
	schema    *store.Schema[T]
	rows      []T
	lastStamp time.Time // latest created_at or updated_at handed out
	logger    *slog.Logger
}

func newRepository[T any](s *Store, schema *store.Schema[T]) *Repository[T] {
	r := &Repository[T]{
		store:  s,
		schema: schema,
		logger: s.logger.With(slog.String("table", schema.Table)),
	}
	s.tables = append(s.tables, r)
	return r
}

// Ensure Repository implements store.Repository.
var (
	_ store.ClientRepository = (*Repository[domain.Client])(nil)
	_ store.PostRepository   = (*Repository[domain.Post])(nil)
)

func (r *Repository[T]) snapshot() func() {
	rows := make([]T, len(r.rows))
	copy(rows, r.rows)
	last := r.lastStamp
	return func() {
		r.rows = rows
		r.lastStamp = last
	}
}

// WithTx implements store.Repository.WithTx. Transactions are managed by the
// Store, so the repository is returned unchanged.
func (r *Repository[T]) WithTx(_ *sql.Tx) store.Repository[T] {
	return r
}

// matches evaluates f against e.
func (r *Repository[T]) matches(e *T, f store.Filter) bool {
	switch node := f.(type) {
	case nil:
		return true
	case store.Equal:
		c, ok := r.schema.Lookup(node.Field)
		return ok && reflect.DeepEqual(c.Value(e), node.Value)
	case store.AllOf:
		for _, child := range node {
			if !r.matches(e, child) {
				return false
			}
		}
		return true
	case store.AnyOf:
		for _, child := range node {
			if r.matches(e, child) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// indexOf returns the position of the row with id that satisfies filter, or -1.
func (r *Repository[T]) indexOf(id uuid.UUID, filter store.Filter) int {
	for i := range r.rows {
		if r.schema.ID(&r.rows[i]) == id && r.matches(&r.rows[i], filter) {
			return i
		}
	}
	return -1
}

func (r *Repository[T]) selectAll(filter store.Filter) []*T {
	out := make([]*T, 0)
	for i := range r.rows {
		if r.matches(&r.rows[i], filter) {
			row := r.rows[i]
			out = append(out, &row)
		}
	}
	return out
}

// conflicts reports whether candidate collides with any row except skip on a
// unique column.
func (r *Repository[T]) conflicts(candidate *T, skip int) error {
	for _, c := range r.schema.UniqueColumns() {
		value := c.Value(candidate)
		for i := range r.rows {
			if i != skip && reflect.DeepEqual(c.Value(&r.rows[i]), value) {
				return fmt.Errorf("%w: duplicate %s", r.schema.ConflictError(), c.Name)
			}
		}
	}
	return nil
}

// GetMultiPaginated implements store.Repository.GetMultiPaginated.
func (r *Repository[T]) GetMultiPaginated(
	ctx context.Context,
	offset, limit int,
	filter store.Filter,
) ([]*T, error) {
	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := r.selectAll(filter)
	if offset >= len(all) {
		return make([]*T, 0), nil
	}
	if limit > len(all)-offset {
		limit = len(all) - offset
	}
	end := offset + limit

	logger.FromContextOrDefault(ctx, r.logger).Debug("listed entities",
		slog.Int("count", end-offset),
		slog.Int("offset", offset),
		slog.Int("limit", limit))
	return all[offset:end], nil
}

// GetByID implements store.Repository.GetByID.
func (r *Repository[T]) GetByID(_ context.Context, id uuid.UUID, filter store.Filter) (*T, error) {
	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i := r.indexOf(id, filter)
	if i < 0 {
		return nil, r.schema.NotFoundError()
	}
	row := r.rows[i]
	return &row, nil
}

// GetByFilter implements store.Repository.GetByFilter.
func (r *Repository[T]) GetByFilter(_ context.Context, filter store.Filter) ([]*T, error) {
	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.selectAll(filter), nil
}

// GetByFilterOneOrNone implements store.Repository.GetByFilterOneOrNone.
func (r *Repository[T]) GetByFilterOneOrNone(ctx context.Context, filter store.Filter) (*T, error) {
	matches, err := r.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		if len(matches) > 1 {
			logger.FromContextOrDefault(ctx, r.logger).Warn("filter matched more than one entity")
		}
		return nil, r.schema.NotFoundError()
	}
	return matches[0], nil
}

// insert adds a copy of entity with generated fields assigned. The caller
// holds the write lock.
func (r *Repository[T]) insert(entity *T) (*T, error) {
	row := *r.schema.New()
	for _, c := range r.schema.Insertable() {
		if err := assign(c.Ref(&row), c.Value(entity)); err != nil {
			return nil, err
		}
	}

	if c, ok := r.schema.Lookup(store.CreatedAtField); ok {
		r.lastStamp = r.store.stamp(r.lastStamp)
		if err := assign(c.Ref(&row), r.lastStamp); err != nil {
			return nil, err
		}
	}

	if err := r.conflicts(&row, -1); err != nil {
		return nil, err
	}

	r.rows = append(r.rows, row)
	return &row, nil
}

// Create implements store.Repository.Create.
func (r *Repository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	created, err := r.insert(entity)
	if err != nil {
		logger.FromContextOrDefault(ctx, r.logger).Warn("failed to create entity",
			slog.String("error", err.Error()))
		return nil, err
	}
	out := *created
	return &out, nil
}

// CreateAll implements store.Repository.CreateAll.
func (r *Repository[T]) CreateAll(ctx context.Context, entities []*T) ([]*T, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	restore := r.snapshot()
	created := make([]*T, 0, len(entities))
	for _, entity := range entities {
		row, err := r.insert(entity)
		if err != nil {
			restore()
			logger.FromContextOrDefault(ctx, r.logger).Warn("failed to create entities",
				slog.String("error", err.Error()),
				slog.Int("count", len(entities)))
			return nil, err
		}
		out := *row
		created = append(created, &out)
	}
	return created, nil
}

// Update implements store.Repository.Update.
func (r *Repository[T]) Update(
	ctx context.Context,
	id uuid.UUID,
	changes store.Changes,
	filter store.Filter,
) (*T, error) {
	if err := r.schema.ValidateFilter(filter); err != nil {
		return nil, err
	}
	if err := r.schema.ValidateChanges(changes); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.indexOf(id, filter)
	if i < 0 {
		return nil, r.schema.NotFoundError()
	}

	row := r.rows[i]
	for _, name := range changes.Fields() {
		c, _ := r.schema.Lookup(name)
		if err := assign(c.Ref(&row), changes[name]); err != nil {
			return nil, err
		}
	}
	if c, ok := r.schema.Lookup(store.UpdatedAtField); ok {
		r.lastStamp = r.store.stamp(r.lastStamp)
		stamped := r.lastStamp
		if err := assign(c.Ref(&row), &stamped); err != nil {
			return nil, err
		}
	}
	if err := r.conflicts(&row, i); err != nil {
		return nil, err
	}

	r.rows[i] = row
	logger.FromContextOrDefault(ctx, r.logger).Debug("entity updated", slog.String("id", id.String()))
	return &row, nil
}

// Delete implements store.Repository.Delete.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID, filter store.Filter) error {
	if err := r.schema.ValidateFilter(filter); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.indexOf(id, filter)
	if i < 0 {
		return r.schema.NotFoundError()
	}

	r.rows = append(r.rows[:i:i], r.rows[i+1:]...)
	logger.FromContextOrDefault(ctx, r.logger).Debug("entity deleted", slog.String("id", id.String()))
	return nil
}

// assign stores value through dst, a pointer returned by a schema column's Ref.
func assign(dst, value any) error {
	mismatch := func() error {
		return fmt.Errorf("%w: cannot assign %T to %T", store.ErrStorage, value, dst)
	}

	switch d := dst.(type) {
	case *string:
		v, ok := value.(string)
		if !ok {
			return mismatch()
		}
		*d = v
	case *uuid.UUID:
		v, ok := value.(uuid.UUID)
		if !ok {
			return mismatch()
		}
		*d = v
	case *time.Time:
		v, ok := value.(time.Time)
		if !ok {
			return mismatch()
		}
		*d = v
	case **time.Time:
		switch v := value.(type) {
		case nil:
			*d = nil
		case *time.Time:
			*d = v
		case time.Time:
			*d = &v
		default:
			return mismatch()
		}
	default:
		return mismatch()
	}
	return nil
}
