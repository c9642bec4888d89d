package repository

import (
	"fmt"
	"strings"
)

// Query accumulates the pieces of a SELECT statement. Filters and joins
// mutate it through Arg, Where and Join; the repository renders it once.
type Query struct {
	table   string
	columns []string
	joins   []string
	where   []string
	args    []any
	limit   int
	offset  int
}

// NewQuery starts a query over table selecting columns.
func NewQuery(table string, columns []string) *Query {
	return &Query{table: table, columns: columns}
}

// Table returns the queried table name, for filters that need to qualify
// column references.
func (q *Query) Table() string {
	return q.table
}

// Arg registers a query argument and returns its positional placeholder.
func (q *Query) Arg(value any) string {
	q.args = append(q.args, value)
	return fmt.Sprintf("$%d", len(q.args))
}

// Where appends a condition; all conditions are AND-ed together.
func (q *Query) Where(condition string) {
	q.where = append(q.where, condition)
}

// Join appends a join clause, e.g. "JOIN users ON users.id = documents.owner_id".
func (q *Query) Join(clause string) {
	q.joins = append(q.joins, clause)
}

// Paginate applies LIMIT/OFFSET on render.
func (q *Query) Paginate(limit, offset int) {
	q.limit = limit
	q.offset = offset
}

// SQL renders the SELECT statement and its arguments.
func (q *Query) SQL() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(q.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(q.table)
	q.writeJoinsAndWhere(&sb)
	if q.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", q.limit, q.offset)
	}
	return sb.String(), q.args
}

// CountSQL renders a COUNT(*) statement over the same joins and conditions,
// ignoring pagination.
func (q *Query) CountSQL() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(q.table)
	q.writeJoinsAndWhere(&sb)
	return sb.String(), q.args
}

func (q *Query) writeJoinsAndWhere(sb *strings.Builder) {
	for _, join := range q.joins {
		sb.WriteString(" ")
		sb.WriteString(join)
	}
	if len(q.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.where, " AND "))
	}
}
