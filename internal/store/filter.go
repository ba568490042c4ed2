package store

import (
	"fmt"
)

// Filter is a predicate over entity fields. The only implementations are
// Equal, AllOf and AnyOf; a nil Filter matches every entity.
type Filter interface {
	filter()
}

// Equal matches entities whose Field equals Value.
type Equal struct {
	Field string
	Value any
}

// AllOf matches entities that satisfy every child. An empty AllOf matches everything.
type AllOf []Filter

// AnyOf matches entities that satisfy at least one child. An empty AnyOf matches nothing.
type AnyOf []Filter

func (Equal) filter() {}
func (AllOf) filter() {}
func (AnyOf) filter() {}

// Eq returns an equality predicate.
func Eq(field string, value any) Filter {
	return Equal{Field: field, Value: value}
}

// And combines filters with logical AND, dropping nil children.
func And(filters ...Filter) Filter {
	out := make(AllOf, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

// Or combines filters with logical OR.
func Or(filters ...Filter) Filter {
	out := make(AnyOf, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Scope is an access boundary, typically "owned by the caller". A Scope can
// only be narrowed: every filter added to it is AND-combined with the base
// predicate, so caller-supplied criteria can never widen what is visible.
type Scope struct {
	base Filter
}

// NewScope creates a Scope rooted at base. A nil base is an unrestricted scope.
func NewScope(base Filter) Scope {
	return Scope{base: base}
}

// Narrow returns a Scope that additionally requires f.
func (s Scope) Narrow(f Filter) Scope {
	return Scope{base: And(s.base, f)}
}

// Filter returns the predicate the repository should apply.
func (s Scope) Filter() Filter {
	return s.base
}

// FieldNames returns every field referenced by f, in tree order.
func FieldNames(f Filter) []string {
	var names []string
	var walk func(Filter)
	walk = func(f Filter) {
		switch node := f.(type) {
		case Equal:
			names = append(names, node.Field)
		case AllOf:
			for _, child := range node {
				walk(child)
			}
		case AnyOf:
			for _, child := range node {
				walk(child)
			}
		}
	}
	walk(f)
	return names
}

// ValidateFilter reports ErrInvalidFilter if f references a field outside known.
func ValidateFilter(f Filter, known func(field string) bool) error {
	for _, name := range FieldNames(f) {
		if !known(name) {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, name)
		}
	}
	return nil
}
