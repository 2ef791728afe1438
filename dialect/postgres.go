package dialect

import (
	"strconv"

	"github.com/songww/xiayu/ast"
)

type Postgres struct{}

func NewPostgresDialect() Dialect { return Postgres{} }

var postgresLiterals = literalStyle{
	name:          NamePostgres,
	bytes:         hexBytes(`E'\\x`, "'"),
	trueLit:       "true",
	falseLit:      "false",
	unsigned:      true,
	postgresKinds: true,
}

func (Postgres) Name() string                       { return NamePostgres }
func (Postgres) QuoteIdentifier(name string) string { return quote(name, '"', '"') }
func (Postgres) Placeholder(n int) string           { return "$" + strconv.Itoa(n) }
func (Postgres) Wildcard() string                   { return "%" }

func (Postgres) RenderValue(v ast.Value) (string, error) { return postgresLiterals.render(v) }

func (Postgres) Has(c Capability) bool {
	const caps = TupleComparison | Returning | OnConflictDoNothing | JSONArrayPath | FullTextSearch | RowToJSON
	return caps&c == c
}

func (Postgres) TypeName(f ast.TypeFamily) string {
	switch f.Kind {
	case ast.FamilyText:
		if f.Length > 0 && !f.Max {
			return "VARCHAR(" + strconv.Itoa(f.Length) + ")"
		}
		return "TEXT"
	case ast.FamilyInt:
		return "BIGINT"
	case ast.FamilyFloat:
		return "REAL"
	case ast.FamilyDouble:
		return "DOUBLE PRECISION"
	case ast.FamilyDecimal:
		return decimalType("DECIMAL", f)
	case ast.FamilyBoolean:
		return "BOOLEAN"
	case ast.FamilyUUID:
		return "UUID"
	case ast.FamilyDateTime:
		return "TIMESTAMPTZ"
	case ast.FamilyBytes:
		return "BYTEA"
	case ast.FamilyJSON:
		return "JSONB"
	case ast.FamilyXML:
		return "XML"
	}
	return "TEXT"
}

func decimalType(name string, f ast.TypeFamily) string {
	p, s := f.Precision, f.Scale
	if p == 0 {
		p, s = 32, 16
	}
	return name + "(" + strconv.Itoa(p) + "," + strconv.Itoa(s) + ")"
}
