package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNoLastInsertID = errors.New("LastInsertId is not supported by postgres, use RETURNING")

// PgxDatabase implements Database for pgxpool.Pool. pgx prepares and caches
// statements per connection on its own.
type PgxDatabase struct {
	pool *pgxpool.Pool
}

func NewPgxDatabase(pool *pgxpool.Pool) *PgxDatabase {
	return &PgxDatabase{pool: pool}
}

// Pool returns the wrapped pool.
func (p *PgxDatabase) Pool() *pgxpool.Pool { return p.pool }

// QueryContext executes a query that returns rows.
func (p *PgxDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &PgxRows{rows: rows}, nil
}

// ExecContext executes a statement without returning rows.
func (p *PgxDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return PgxResult{tag: tag}, nil
}

func (p *PgxDatabase) PingContext(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PgxDatabase) Close() error {
	p.pool.Close()
	return nil
}

// PgxRows implements Rows for pgx.Rows.
type PgxRows struct {
	rows    pgx.Rows
	columns []string
}

func (p *PgxRows) Next() bool             { return p.rows.Next() }
func (p *PgxRows) Scan(dest ...any) error { return p.rows.Scan(dest...) }
func (p *PgxRows) Err() error             { return p.rows.Err() }

func (p *PgxRows) Close() error {
	p.rows.Close()
	return p.rows.Err()
}

// Columns returns the column names of the result set.
func (p *PgxRows) Columns() ([]string, error) {
	if p.columns == nil {
		fields := p.rows.FieldDescriptions()
		p.columns = make([]string, len(fields))
		for i, fd := range fields {
			p.columns[i] = fd.Name
		}
	}
	return p.columns, nil
}

// Values returns the decoded values of the current row.
func (p *PgxRows) Values() ([]any, error) {
	return p.rows.Values()
}

// PgxResult implements Result for a pgx command tag.
type PgxResult struct {
	tag pgconn.CommandTag
}

func (r PgxResult) LastInsertId() (int64, error) {
	return 0, errNoLastInsertID
}

func (r PgxResult) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}

var _ Database = (*PgxDatabase)(nil)
