package dialect

import (
	"strconv"

	"github.com/songww/xiayu/ast"
)

type MSSQL struct{}

func NewMSSQLDialect() Dialect { return MSSQL{} }

var mssqlLiterals = literalStyle{
	name:     NameMSSQL,
	bytes:    hexBytes("0x", ""),
	trueLit:  "1",
	falseLit: "0",
	typedLiteral: func(sqlType, text string) string {
		return "CONVERT(" + sqlType + ", N'" + text + "')"
	},
}

func (MSSQL) Name() string                       { return NameMSSQL }
func (MSSQL) QuoteIdentifier(name string) string { return quote(name, '[', ']') }
func (MSSQL) Placeholder(n int) string           { return "@P" + strconv.Itoa(n) }
func (MSSQL) Wildcard() string                   { return "%" }

func (MSSQL) RenderValue(v ast.Value) (string, error) { return mssqlLiterals.render(v) }

func (MSSQL) Has(c Capability) bool {
	const caps = Merge | OutputInto
	return caps&c == c
}

func (MSSQL) TypeName(f ast.TypeFamily) string {
	switch f.Kind {
	case ast.FamilyText:
		return sized("NVARCHAR", f, 4000)
	case ast.FamilyInt:
		return "BIGINT"
	case ast.FamilyFloat:
		return "FLOAT(24)"
	case ast.FamilyDouble:
		return "FLOAT(53)"
	case ast.FamilyDecimal:
		return decimalType("DECIMAL", f)
	case ast.FamilyBoolean:
		return "BIT"
	case ast.FamilyUUID:
		return "UNIQUEIDENTIFIER"
	case ast.FamilyDateTime:
		return "DATETIMEOFFSET"
	case ast.FamilyBytes:
		return sized("VARBINARY", f, 8000)
	case ast.FamilyJSON:
		return "NVARCHAR(MAX)"
	case ast.FamilyXML:
		return "XML"
	}
	return "NVARCHAR(255)"
}

func sized(name string, f ast.TypeFamily, fallback int) string {
	switch {
	case f.Max:
		return name + "(MAX)"
	case f.Length > 0:
		return name + "(" + strconv.Itoa(f.Length) + ")"
	}
	return name + "(" + strconv.Itoa(fallback) + ")"
}
