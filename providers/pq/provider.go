// Package pq registers a lib/pq provider under "pq". It runs Postgres on
// database/sql, so statements go through the shared statement cache.
package pq

import (
	"context"
	"database/sql"
	"fmt"

	libpq "github.com/lib/pq"

	"github.com/songww/xiayu/connector"
	"github.com/songww/xiayu/dialect"
)

type Provider struct{}

func init() {
	connector.Register("pq", &Provider{})
}

func buildDSN(cfg connector.Config) string {
	return connector.NewDSNBuilder("postgres").
		FromConfig(cfg).
		WithPostgresDefaults().
		Build()
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	c, err := libpq.NewConnector(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing postgres config: %w", err)
	}
	return connector.OpenSQL(ctx, sql.OpenDB(c), dialect.NewPostgresDialect(), cfg)
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}
