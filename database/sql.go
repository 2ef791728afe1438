package database

import (
	"context"
	"database/sql"

	"github.com/songww/xiayu/cache"
	"github.com/songww/xiayu/dialect"
)

// SQLDatabase implements Database for *sql.DB, preparing statements through
// a StatementCache.
type SQLDatabase struct {
	db        *sql.DB
	stmts     *cache.StatementCache
	cacheSize int
}

type SQLOption func(*SQLDatabase)

// WithStatementCacheSize bounds the number of prepared statements kept per
// database. A size of zero disables statement caching.
func WithStatementCacheSize(n int) SQLOption {
	return func(s *SQLDatabase) {
		s.cacheSize = n
	}
}

// NewSQLDatabase wraps db. d keys the statement cache.
func NewSQLDatabase(db *sql.DB, d dialect.Dialect, opts ...SQLOption) *SQLDatabase {
	s := &SQLDatabase{db: db, cacheSize: cache.DefaultStatementCacheSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheSize > 0 {
		s.stmts = cache.NewStatementCache(d.Name(), s.cacheSize)
	}
	return s
}

// DB returns the wrapped pool.
func (s *SQLDatabase) DB() *sql.DB { return s.db }

// Statements returns the statement cache, or nil when caching is disabled.
func (s *SQLDatabase) Statements() *cache.StatementCache { return s.stmts }

// QueryContext executes a query that returns rows.
func (s *SQLDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if s.stmts == nil {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return rows, nil
	}

	stmt, release, err := s.stmts.GetOrPrepare(ctx, s.db, query)
	if err != nil {
		return nil, err
	}
	// A statement closed after release stays open until the rows are closed.
	defer release()
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecContext executes a statement without returning rows.
func (s *SQLDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	if s.stmts == nil {
		return s.db.ExecContext(ctx, query, args...)
	}

	stmt, release, err := s.stmts.GetOrPrepare(ctx, s.db, query)
	if err != nil {
		return nil, err
	}
	defer release()
	return stmt.ExecContext(ctx, args...)
}

// PingContext verifies the connection to the database is alive.
func (s *SQLDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes cached statements and then the pool.
func (s *SQLDatabase) Close() error {
	if s.stmts != nil {
		s.stmts.Close()
	}
	return s.db.Close()
}

var _ Database = (*SQLDatabase)(nil)
