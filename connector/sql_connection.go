package connector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/songww/xiayu/database"
	"github.com/songww/xiayu/dialect"
)

// SQLConnection is the Connection shared by providers built on database/sql.
type SQLConnection struct {
	db      *database.SQLDatabase
	dialect dialect.Dialect
}

// OpenSQL applies cfg's pool settings to db, pings it and wraps it. db is
// closed when the ping fails.
func OpenSQL(ctx context.Context, db *sql.DB, d dialect.Dialect, cfg Config) (*SQLConnection, error) {
	db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", d.Name(), err)
	}

	var opts []database.SQLOption
	switch {
	case cfg.StatementCacheSize < 0:
		opts = append(opts, database.WithStatementCacheSize(0))
	case cfg.StatementCacheSize > 0:
		opts = append(opts, database.WithStatementCacheSize(cfg.StatementCacheSize))
	}
	return &SQLConnection{
		db:      database.NewSQLDatabase(db, d, opts...),
		dialect: d,
	}, nil
}

func (c *SQLConnection) Database() database.Database { return c.db }

// DB returns the underlying pool.
func (c *SQLConnection) DB() *sql.DB { return c.db.DB() }

func (c *SQLConnection) Dialect() dialect.Dialect { return c.dialect }

func (c *SQLConnection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLConnection) Stats() ConnectionStats {
	return statsFromDB(c.db.DB().Stats())
}

func (c *SQLConnection) Close() error {
	return c.db.Close()
}

var _ Connection = (*SQLConnection)(nil)
