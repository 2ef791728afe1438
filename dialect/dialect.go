// Package dialect describes the syntax and capabilities of each supported
// database.
package dialect

import (
	"strings"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/sqlerr"
)

type Capability uint32

const (
	// TupleComparison allows `(a, b) = (x, y)` and `(a, b) IN (...)`.
	TupleComparison Capability = 1 << iota
	Returning
	OnConflictDoNothing
	InsertIgnore
	InsertOrIgnore
	Merge
	JSONArrayPath
	JSONStringPath
	FullTextSearch
	RowToJSON
	// OutputInto returns inserted rows through OUTPUT ... INTO a table variable.
	OutputInto
)

// Dialect is the syntax table a visitor renders with.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	Placeholder(n int) string
	Wildcard() string
	// RenderValue writes v as an inline literal.
	RenderValue(v ast.Value) (string, error)
	// TypeName maps a type family to the dialect's column type.
	TypeName(f ast.TypeFamily) string
	Has(c Capability) bool
}

const (
	NamePostgres = "postgres"
	NameMySQL    = "mysql"
	NameSQLite   = "sqlite"
	NameMSSQL    = "mssql"
	NameTiDB     = "tidb"
)

var registry = map[string]Dialect{
	NamePostgres: Postgres{},
	NameMySQL:    MySQL{},
	NameSQLite:   SQLite{},
	NameMSSQL:    MSSQL{},
	NameTiDB:     TiDB{},
}

var aliases = map[string]string{
	"postgresql": NamePostgres,
	"pgx":        NamePostgres,
	"pq":         NamePostgres,
	"sqlite3":    NameSQLite,
	"sqlserver":  NameMSSQL,
}

// Get looks a dialect up by name or common driver alias.
func Get(name string) (Dialect, error) {
	key := strings.ToLower(name)
	if a, ok := aliases[key]; ok {
		key = a
	}
	d, ok := registry[key]
	if !ok {
		return nil, sqlerr.Unsupported("unknown dialect %q", name)
	}
	return d, nil
}

func quote(name string, open, close byte) string {
	var sb strings.Builder
	sb.Grow(len(name) + 2)
	sb.WriteByte(open)
	for i := 0; i < len(name); i++ {
		if name[i] == close {
			sb.WriteByte(close)
		}
		sb.WriteByte(name[i])
	}
	sb.WriteByte(close)
	return sb.String()
}
