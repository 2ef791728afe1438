// Package postgres registers the pgx pool provider under "postgres".
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/songww/xiayu/connector"
	"github.com/songww/xiayu/database"
	"github.com/songww/xiayu/dialect"
)

type Provider struct{}

func init() {
	connector.Register("postgres", &Provider{})
}

func buildDSN(cfg connector.Config) string {
	return connector.NewDSNBuilder("postgres").
		FromConfig(cfg).
		WithPostgresDefaults().
		Build()
}

func poolConfig(cfg connector.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing postgres config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	return poolCfg, nil
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	return &Connection{pool: pool, db: database.NewPgxDatabase(pool)}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

// Connection is an open pgx pool.
type Connection struct {
	pool *pgxpool.Pool
	db   *database.PgxDatabase
}

func (c *Connection) Database() database.Database { return c.db }

// DB exposes the pool through database/sql.
func (c *Connection) DB() *sql.DB {
	return stdlib.OpenDBFromPool(c.pool)
}

func (c *Connection) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

func (c *Connection) Health(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Connection) Stats() connector.ConnectionStats {
	s := c.pool.Stat()
	return connector.ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}
