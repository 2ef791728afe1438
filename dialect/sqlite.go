package dialect

import (
	"github.com/songww/xiayu/ast"
)

type SQLite struct{}

func NewSQLiteDialect() Dialect { return SQLite{} }

var sqliteLiterals = literalStyle{
	name:     NameSQLite,
	bytes:    hexBytes("x'", "'"),
	trueLit:  "true",
	falseLit: "false",
	unsigned: true,
}

func (SQLite) Name() string                       { return NameSQLite }
func (SQLite) QuoteIdentifier(name string) string { return quote(name, '`', '`') }
func (SQLite) Placeholder(int) string             { return "?" }
func (SQLite) Wildcard() string                   { return "%" }

func (SQLite) RenderValue(v ast.Value) (string, error) { return sqliteLiterals.render(v) }

func (SQLite) Has(c Capability) bool {
	const caps = TupleComparison | Returning | InsertOrIgnore
	return caps&c == c
}

// TypeName follows SQLite's type affinity rules.
func (SQLite) TypeName(f ast.TypeFamily) string {
	switch f.Kind {
	case ast.FamilyInt:
		return "INTEGER"
	case ast.FamilyFloat, ast.FamilyDouble:
		return "REAL"
	case ast.FamilyDecimal:
		return "NUMERIC"
	case ast.FamilyBoolean:
		return "BOOLEAN"
	case ast.FamilyDateTime:
		return "DATETIME"
	case ast.FamilyBytes:
		return "BLOB"
	}
	return "TEXT"
}
