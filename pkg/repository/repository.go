// Package repository provides a generic CRUD base over one persisted entity
// type, backed by pgx. Concrete repositories embed Base, describe their
// table through a Schema and register named join builders at construction
// time.
package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
	"github.com/AstralMortem/go-microservice-template/pkg/database"
)

// Payload is a column-to-value map applied field by field on create and
// update.
type Payload map[string]any

// Schema describes how entity M maps onto its table.
type Schema[M any, ID any] struct {
	Table    string
	IDColumn string
	// Columns is the select/returning column list; Scan must read them in
	// the same order.
	Columns []string
	Scan    func(row pgx.Row) (*M, error)
	// EntityID extracts the identifier used by Update and Delete.
	EntityID func(m *M) ID
}

// Filter narrows a list query with WHERE conditions.
type Filter func(q *Query)

// Join rewrites a list query, typically adding a JOIN clause.
type Join func(q *Query)

// Pagination selects one page of a list result.
type Pagination struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Page is one page of entities plus the total match count.
type Page[M any] struct {
	Items    []*M  `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// ListOptions composes filters and named joins for list queries.
type ListOptions struct {
	Filters []Filter
	Joins   []string
}

// Base implements CRUD and paginated listing for entity M with identifier ID.
type Base[M any, ID any] struct {
	pool   *pgxpool.Pool
	schema Schema[M, ID]
	joins  map[string]Join
}

// New builds a Base repository. Schema misconfiguration panics so a broken
// repository fails at startup, not on first request.
func New[M any, ID any](pool *pgxpool.Pool, schema Schema[M, ID]) *Base[M, ID] {
	if schema.Table == "" || schema.IDColumn == "" {
		panic("repository: schema table and id column are required")
	}
	if len(schema.Columns) == 0 || schema.Scan == nil || schema.EntityID == nil {
		panic(fmt.Sprintf("repository: schema for table %q is incomplete", schema.Table))
	}
	return &Base[M, ID]{
		pool:   pool,
		schema: schema,
		joins:  make(map[string]Join),
	}
}

// RegisterJoin binds a join builder to a name resolvable via ListOptions.
func (b *Base[M, ID]) RegisterJoin(name string, join Join) {
	b.joins[strings.ToLower(name)] = join
}

// Pool exposes the connection pool to concrete repositories that add
// bespoke queries beyond the generic CRUD set.
func (b *Base[M, ID]) Pool() *pgxpool.Pool {
	return b.pool
}

// GetByID returns the entity or (nil, nil) when absent.
func (b *Base[M, ID]) GetByID(ctx context.Context, id ID) (*M, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		strings.Join(b.qualifiedColumns(), ", "), b.schema.Table, b.idColumn(),
	)
	entity, err := b.schema.Scan(b.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s by id: %w", b.schema.Table, err)
	}
	return entity, nil
}

// List returns all entities matching the options, unpaginated.
func (b *Base[M, ID]) List(ctx context.Context, opts ListOptions) ([]*M, error) {
	q, err := b.buildListQuery(opts)
	if err != nil {
		return nil, err
	}
	sql, args := q.SQL()
	return b.queryMany(ctx, sql, args)
}

// ListPage returns one page of entities matching the options, along with the
// total match count.
func (b *Base[M, ID]) ListPage(ctx context.Context, pg Pagination, opts ListOptions) (*Page[M], error) {
	if pg.Page < 1 {
		pg.Page = 1
	}
	if pg.PageSize < 1 {
		pg.PageSize = 50
	}

	q, err := b.buildListQuery(opts)
	if err != nil {
		return nil, err
	}

	countSQL, countArgs := q.CountSQL()
	var total int64
	if err := b.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", b.schema.Table, err)
	}

	q.Paginate(pg.PageSize, (pg.Page-1)*pg.PageSize)
	sql, args := q.SQL()
	items, err := b.queryMany(ctx, sql, args)
	if err != nil {
		return nil, err
	}

	return &Page[M]{
		Items:    items,
		Total:    total,
		Page:     pg.Page,
		PageSize: pg.PageSize,
	}, nil
}

// Create inserts the payload and returns the refreshed entity. The insert is
// one committed transaction.
func (b *Base[M, ID]) Create(ctx context.Context, payload Payload) (*M, error) {
	if len(payload) == 0 {
		return nil, errors.New("repository: create payload is empty")
	}

	columns := sortedColumns(payload)
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = payload[col]
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		b.schema.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(b.schema.Columns, ", "),
	)

	var entity *M
	err := database.WithTx(ctx, b.pool, func(tx pgx.Tx) error {
		var scanErr error
		entity, scanErr = b.schema.Scan(tx.QueryRow(ctx, sql, args...))
		if scanErr != nil {
			return fmt.Errorf("insert %s: %w", b.schema.Table, scanErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Update overwrites the payload fields on the stored entity and returns the
// refreshed row. The update is one committed transaction.
func (b *Base[M, ID]) Update(ctx context.Context, entity *M, payload Payload) (*M, error) {
	if len(payload) == 0 {
		return entity, nil
	}

	columns := sortedColumns(payload)
	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, payload[col])
	}
	args = append(args, b.schema.EntityID(entity))

	sql := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		b.schema.Table,
		strings.Join(assignments, ", "),
		b.schema.IDColumn,
		len(args),
		strings.Join(b.schema.Columns, ", "),
	)

	var updated *M
	err := database.WithTx(ctx, b.pool, func(tx pgx.Tx) error {
		var scanErr error
		updated, scanErr = b.schema.Scan(tx.QueryRow(ctx, sql, args...))
		if scanErr != nil {
			return fmt.Errorf("update %s: %w", b.schema.Table, scanErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the entity in one committed transaction.
func (b *Base[M, ID]) Delete(ctx context.Context, entity *M) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", b.schema.Table, b.schema.IDColumn)
	return database.WithTx(ctx, b.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, sql, b.schema.EntityID(entity)); err != nil {
			return fmt.Errorf("delete from %s: %w", b.schema.Table, err)
		}
		return nil
	})
}

func (b *Base[M, ID]) buildListQuery(opts ListOptions) (*Query, error) {
	joins, err := b.resolveJoins(opts.Joins)
	if err != nil {
		return nil, err
	}
	q := NewQuery(b.schema.Table, b.qualifiedColumns())
	for _, join := range joins {
		join(q)
	}
	for _, filter := range opts.Filters {
		filter(q)
	}
	return q, nil
}

// resolveJoins fails eagerly when a requested join name has no registered
// builder; that is a repository configuration bug, not a caller error.
func (b *Base[M, ID]) resolveJoins(names []string) ([]Join, error) {
	if len(names) == 0 {
		return nil, nil
	}
	joins := make([]Join, 0, len(names))
	for _, name := range names {
		join, ok := b.joins[strings.ToLower(name)]
		if !ok {
			return nil, apperror.New(
				http.StatusInternalServerError,
				"Unknown join",
				fmt.Sprintf("join '%s' is not registered on repository for table '%s'", name, b.schema.Table),
			)
		}
		joins = append(joins, join)
	}
	return joins, nil
}

func (b *Base[M, ID]) queryMany(ctx context.Context, sql string, args []any) ([]*M, error) {
	rows, err := b.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", b.schema.Table, err)
	}
	defer rows.Close()

	var items []*M
	for rows.Next() {
		entity, err := b.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", b.schema.Table, err)
		}
		items = append(items, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", b.schema.Table, err)
	}
	return items, nil
}

// qualifiedColumns prefixes columns with the table name so joined tables
// cannot shadow them.
func (b *Base[M, ID]) qualifiedColumns() []string {
	out := make([]string, len(b.schema.Columns))
	for i, col := range b.schema.Columns {
		out[i] = b.schema.Table + "." + col
	}
	return out
}

func (b *Base[M, ID]) idColumn() string {
	return b.schema.Table + "." + b.schema.IDColumn
}

func sortedColumns(payload Payload) []string {
	columns := make([]string, 0, len(payload))
	for col := range payload {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
