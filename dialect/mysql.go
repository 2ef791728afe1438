package dialect

import (
	"strconv"

	"github.com/songww/xiayu/ast"
)

type MySQL struct{}

func NewMySQLDialect() Dialect { return MySQL{} }

var mysqlLiterals = literalStyle{
	name:        NameMySQL,
	bytes:       hexBytes("x'", "'"),
	trueLit:     "true",
	falseLit:    "false",
	backslashes: true,
	unsigned:    true,
}

func (MySQL) Name() string                       { return NameMySQL }
func (MySQL) QuoteIdentifier(name string) string { return quote(name, '`', '`') }
func (MySQL) Placeholder(int) string             { return "?" }
func (MySQL) Wildcard() string                   { return "%" }

func (MySQL) RenderValue(v ast.Value) (string, error) { return mysqlLiterals.render(v) }

func (MySQL) Has(c Capability) bool {
	const caps = TupleComparison | InsertIgnore | JSONStringPath
	return caps&c == c
}

func (MySQL) TypeName(f ast.TypeFamily) string {
	switch f.Kind {
	case ast.FamilyText:
		if f.Max {
			return "LONGTEXT"
		}
		if f.Length > 0 {
			return "VARCHAR(" + strconv.Itoa(f.Length) + ")"
		}
		return "TEXT"
	case ast.FamilyInt:
		return "BIGINT"
	case ast.FamilyFloat:
		return "FLOAT"
	case ast.FamilyDouble:
		return "DOUBLE"
	case ast.FamilyDecimal:
		return decimalType("DECIMAL", f)
	case ast.FamilyBoolean:
		return "BOOLEAN"
	case ast.FamilyUUID:
		return "CHAR(36)"
	case ast.FamilyDateTime:
		return "DATETIME(3)"
	case ast.FamilyBytes:
		if f.Length > 0 && !f.Max {
			return "VARBINARY(" + strconv.Itoa(f.Length) + ")"
		}
		return "LONGBLOB"
	case ast.FamilyJSON:
		return "JSON"
	case ast.FamilyXML:
		return "LONGTEXT"
	}
	return "TEXT"
}
