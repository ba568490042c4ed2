package postgres

import (
	"fmt"
	"strings"

	"github.com/phrazzld/quill-api/internal/store"
)

// queryBuilder accumulates positional arguments while rendering SQL.
type queryBuilder struct {
	args []any
}

// arg records v and returns its placeholder.
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// condition renders f as a boolean SQL expression. Field names must already
// be validated against the schema; they are emitted as column names verbatim.
func (b *queryBuilder) condition(f store.Filter) string {
	switch node := f.(type) {
	case nil:
		return "TRUE"
	case store.Equal:
		return node.Field + " = " + b.arg(node.Value)
	case store.AllOf:
		return b.join(node, " AND ", "TRUE")
	case store.AnyOf:
		return b.join(node, " OR ", "FALSE")
	default:
		// ALLOW-PANIC: Filter is sealed, so this only fires when store gains a node type
		panic(fmt.Sprintf("postgres: unsupported filter node %T", f))
	}
}

func (b *queryBuilder) join(children []store.Filter, op, empty string) string {
	if len(children) == 0 {
		return empty
	}
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = b.condition(child)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, op) + ")"
}

// where renders a WHERE clause, or nothing for a nil filter.
func (b *queryBuilder) where(f store.Filter) string {
	if f == nil {
		return ""
	}
	return " WHERE " + b.condition(f)
}
