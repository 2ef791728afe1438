// Package mysql registers go-sql-driver/mysql providers under "mysql" and
// "tidb".
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	driver "github.com/go-sql-driver/mysql"

	"github.com/songww/xiayu/connector"
	"github.com/songww/xiayu/dialect"
)

// Provider opens MySQL protocol connections rendered with its dialect.
type Provider struct {
	dialect dialect.Dialect
}

func init() {
	connector.Register("mysql", &Provider{dialect: dialect.NewMySQLDialect()})
	connector.Register("tidb", &Provider{dialect: dialect.NewTiDBDialect()})
}

var tlsModes = map[string]string{
	"disable":     "false",
	"require":     "true",
	"skip-verify": "skip-verify",
	"prefer":      "preferred",
}

func driverConfig(cfg connector.Config) (*driver.Config, error) {
	mc := driver.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.QueryTimeout
	mc.WriteTimeout = cfg.QueryTimeout
	if cfg.SSLMode != "" {
		mode, ok := tlsModes[cfg.SSLMode]
		if !ok {
			return nil, fmt.Errorf("unsupported mysql ssl mode: %s", cfg.SSLMode)
		}
		mc.TLSConfig = mode
	}
	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}
	return mc, nil
}

// buildDSN renders the driver DSN, mainly for logging and tests.
func buildDSN(cfg connector.Config) (string, error) {
	mc, err := driverConfig(cfg)
	if err != nil {
		return "", err
	}
	return mc.FormatDSN(), nil
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	mc, err := driverConfig(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := driver.NewConnector(mc)
	if err != nil {
		return nil, err
	}
	return connector.OpenSQL(ctx, sql.OpenDB(conn), p.dialect, cfg)
}

func (p *Provider) Dialect() dialect.Dialect { return p.dialect }
