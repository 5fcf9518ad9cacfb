package query

import (
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

type sortKey struct {
	column string
	dir    Direction
}

// Builder constructs SELECT statements for Cloud Spanner. Builders are
// immutable: every method returns a copy, so a base builder can be shared
// between repositories. Parameter names are generated (@p0, @p1, ...).
type Builder struct {
	table      string
	columns    []string
	conditions []Condition
	sort       []sortKey
	limit      int64
}

// From creates a new Builder for the specified table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends the columns to retrieve. No columns selects *.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.columns = append(nb.columns, columns...)
	return nb
}

// Where adds conditions combined with AND.
func (b *Builder) Where(conds ...Condition) *Builder {
	nb := b.clone()
	nb.conditions = append(nb.conditions, conds...)
	return nb
}

// OrderBy replaces the sort order with a single key.
func (b *Builder) OrderBy(column string, dir Direction) *Builder {
	nb := b.clone()
	nb.sort = []sortKey{{column: column, dir: dir}}
	return nb
}

// ThenBy appends a tie-breaking sort key.
func (b *Builder) ThenBy(column string, dir Direction) *Builder {
	nb := b.clone()
	nb.sort = append(nb.sort, sortKey{column: column, dir: dir})
	return nb
}

// Limit caps the number of rows. Zero or less means no limit.
func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limit = limit
	return nb
}

// Build renders the statement.
func (b *Builder) Build() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]interface{})

	sql.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.columns, ", "))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	if len(b.conditions) > 0 {
		parts := make([]string, 0, len(b.conditions))
		next := 0
		for _, c := range b.conditions {
			fragment, condParams := c.SQL(next)
			parts = append(parts, fragment)
			for k, v := range condParams {
				params[k] = v
			}
			next += len(condParams)
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(parts, " AND "))
	}

	for i, key := range b.sort {
		if i == 0 {
			sql.WriteString(" ORDER BY ")
		} else {
			sql.WriteString(", ")
		}
		sql.WriteString(key.column)
		if key.dir == Desc {
			sql.WriteString(" DESC")
		} else {
			sql.WriteString(" ASC")
		}
	}

	if b.limit > 0 {
		sql.WriteString(" LIMIT @limit")
		params["limit"] = b.limit
	}

	return spanner.Statement{SQL: sql.String(), Params: params}
}

func (b *Builder) clone() *Builder {
	return &Builder{
		table:      b.table,
		columns:    append([]string(nil), b.columns...),
		conditions: append([]Condition(nil), b.conditions...),
		sort:       append([]sortKey(nil), b.sort...),
		limit:      b.limit,
	}
}
