package store

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Field names every schema shares.
const (
	IDField        = "id"
	CreatedAtField = "created_at"
	UpdatedAtField = "updated_at"
)

// Column maps one entity field to its storage column. Field and column names
// are identical.
type Column[T any] struct {
	Name string
	// Generated columns are assigned by storage on insert.
	Generated bool
	// Mutable columns may be set by Update.
	Mutable bool
	// Unique columns carry a uniqueness constraint in storage.
	Unique bool
	// Value returns the field's current value.
	Value func(*T) any
	// Ref returns a pointer to the field, used as a scan target.
	Ref func(*T) any
}

// Schema is the explicit field-mapping contract a Repository needs for T.
// Columns must include IDField and CreatedAtField; UpdatedAtField is optional
// and, when present, is re-stamped on every update.
type Schema[T any] struct {
	Entity  string
	Table   string
	Columns []Column[T]
	New     func() *T
	// NotFound and Conflict are returned in place of the generic kinds so
	// callers can tell entities apart. Both must wrap the generic sentinel.
	NotFound error
	Conflict error
}

// Lookup finds the column for a field name.
func (s *Schema[T]) Lookup(name string) (Column[T], bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Has reports whether the schema declares a field.
func (s *Schema[T]) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// ColumnNames returns every column in declaration order.
func (s *Schema[T]) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Targets returns scan destinations for every column of e in declaration order.
func (s *Schema[T]) Targets(e *T) []any {
	targets := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		targets[i] = c.Ref(e)
	}
	return targets
}

// Insertable returns the columns written by an insert.
func (s *Schema[T]) Insertable() []Column[T] {
	cols := make([]Column[T], 0, len(s.Columns))
	for _, c := range s.Columns {
		if !c.Generated {
			cols = append(cols, c)
		}
	}
	return cols
}

// UniqueColumns returns the columns carrying a uniqueness constraint.
func (s *Schema[T]) UniqueColumns() []Column[T] {
	var cols []Column[T]
	for _, c := range s.Columns {
		if c.Unique || c.Name == IDField {
			cols = append(cols, c)
		}
	}
	return cols
}

// ID returns the identifier of e.
func (s *Schema[T]) ID(e *T) uuid.UUID {
	c, ok := s.Lookup(IDField)
	if !ok {
		return uuid.Nil
	}
	id, _ := c.Value(e).(uuid.UUID)
	return id
}

// ValidateFilter checks that f only references declared fields.
func (s *Schema[T]) ValidateFilter(f Filter) error {
	return ValidateFilter(f, s.Has)
}

// ValidateChanges checks that every changed field is declared and mutable.
func (s *Schema[T]) ValidateChanges(changes Changes) error {
	if len(changes) == 0 {
		return fmt.Errorf("%w: no fields to update", ErrInvalidFilter)
	}
	for name := range changes {
		c, ok := s.Lookup(name)
		if !ok || !c.Mutable {
			return fmt.Errorf("%w: field %q cannot be updated", ErrInvalidFilter, name)
		}
	}
	return nil
}

// NotFoundError returns the entity-specific not found error.
func (s *Schema[T]) NotFoundError() error {
	if s.NotFound != nil {
		return s.NotFound
	}
	return ErrNotFound
}

// ConflictError returns the entity-specific conflict error.
func (s *Schema[T]) ConflictError() error {
	if s.Conflict != nil {
		return s.Conflict
	}
	return ErrConflict
}

// Changes maps field names to their new values for an update.
type Changes map[string]any

// Fields returns the changed field names in a stable order.
func (c Changes) Fields() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
