package search

import (
	"fmt"
	"strings"
)

// Builder composes a SELECT from a variable set of predicates. Predicates
// are ANDed in the order they are added, so the mandatory scope predicate
// goes in first and cannot be displaced by user-supplied filters. `?`
// markers in expressions are rewritten to positional placeholders.
type Builder struct {
	base    string
	clauses []string
	args    []any
	order   string
	limit   int
}

// NewBuilder starts a builder over a base SELECT (without WHERE).
func NewBuilder(base string) *Builder {
	return &Builder{base: base}
}

// And appends a predicate. Each `?` in expr binds one arg, left to right.
func (b *Builder) And(expr string, args ...any) *Builder {
	for _, a := range args {
		b.args = append(b.args, a)
		expr = strings.Replace(expr, "?", fmt.Sprintf("$%d", len(b.args)), 1)
	}
	b.clauses = append(b.clauses, expr)
	return b
}

// AndIf appends the predicate only when the value is non-empty.
func (b *Builder) AndIf(value string, expr string) *Builder {
	if value == "" {
		return b
	}
	return b.And(expr, value)
}

// Match appends an OR-group of case-insensitive substring matches over the
// given columns. An empty query adds nothing, so search degenerates to a
// plain scoped listing.
func (b *Builder) Match(q string, cols ...string) *Builder {
	q = strings.TrimSpace(q)
	if q == "" {
		return b
	}
	pattern := "%" + q + "%"
	b.args = append(b.args, pattern)
	ph := fmt.Sprintf("$%d", len(b.args))
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + " ILIKE " + ph
	}
	b.clauses = append(b.clauses, "("+strings.Join(parts, " OR ")+")")
	return b
}

// OrderBy sets the fixed result order.
func (b *Builder) OrderBy(order string) *Builder {
	b.order = order
	return b
}

// Limit caps the result set. Zero means no cap.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// SQL renders the statement and its args.
func (b *Builder) SQL() (string, []any) {
	query := b.base
	if len(b.clauses) > 0 {
		query += " WHERE " + strings.Join(b.clauses, " AND ")
	}
	if b.order != "" {
		query += " ORDER BY " + b.order
	}
	if b.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", b.limit)
	}
	return query, b.args
}
