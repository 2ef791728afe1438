// Package connector opens database connections through registered providers
// and hands them to the execution layer.
package connector

import (
	"context"
	"log/slog"

	"github.com/songww/xiayu/database"
	"github.com/songww/xiayu/dialect"
)

// Connection is an open pool bound to one dialect.
type Connection interface {
	Database() database.Database
	Dialect() dialect.Dialect
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

// Provider opens connections for one driver.
type Provider interface {
	Connect(ctx context.Context, config Config) (Connection, error)
	Dialect() dialect.Dialect
}

type Connector interface {
	Connect(ctx context.Context) (Connection, error)
	ConnectWithRetry(ctx context.Context, opts RetryConfig) (Connection, error)
}

type Option func(*standardConnector)

// WithLogger sets the logger failed connection attempts are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *standardConnector) {
		if l != nil {
			c.logger = l
		}
	}
}

// Executor returns an executor for conn's database and dialect.
func Executor(conn Connection, opts ...database.Option) *database.Executor {
	return database.NewExecutor(conn.Database(), conn.Dialect(), opts...)
}

// Open connects using cfg.Driver, retrying when cfg.Retry is set.
func Open(ctx context.Context, cfg Config, opts ...Option) (Connection, error) {
	c, err := New(cfg.Driver, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Retry != nil {
		return c.ConnectWithRetry(ctx, *cfg.Retry)
	}
	return c.Connect(ctx)
}
