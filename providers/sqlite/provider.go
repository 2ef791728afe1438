// Package sqlite registers the mattn/go-sqlite3 provider under "sqlite".
package sqlite

import (
	"context"
	"database/sql"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/songww/xiayu/connector"
	"github.com/songww/xiayu/dialect"
)

const (
	driverName = "sqlite3"
	memoryPath = ":memory:"
)

type Provider struct{}

func init() {
	connector.Register("sqlite", &Provider{})
	connector.Register("sqlite3", &Provider{})
}

func buildDSN(cfg connector.Config) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")
	for k, v := range cfg.Params {
		params.Set(k, v)
	}
	return "file:" + cfg.Path + "?" + params.Encode()
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	if cfg.Path == memoryPath {
		// Every connection to :memory: is a separate database.
		cfg.Pool = connector.PoolConfig{MaxOpen: 1, MaxIdle: 1, MaxLifetime: -1, MaxIdleTime: -1}
	}
	db, err := sql.Open(driverName, buildDSN(cfg))
	if err != nil {
		return nil, err
	}
	return connector.OpenSQL(ctx, db, dialect.NewSQLiteDialect(), cfg)
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewSQLiteDialect()
}
