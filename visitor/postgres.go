package visitor

import (
	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
	"github.com/songww/xiayu/sqlerr"
)

// Postgres renders for PostgreSQL.
type Postgres struct {
	base
}

func NewPostgres() *Postgres {
	v := &Postgres{}
	v.base.dialect = dialect.Postgres{}
	v.base.outer = v
	return v
}

// visitEquals casts the side opposite a JSON operand to jsonb and the side
// opposite an XML value to text so that both sides compare.
func (v *Postgres) visitEquals(left, right ast.Expression, not bool) error {
	op := " = "
	if not {
		op = " <> "
	}
	lcast, rcast := castFor(right), castFor(left)
	if err := v.cast(left, lcast); err != nil {
		return err
	}
	v.write(op)
	return v.cast(right, rcast)
}

func (v *Postgres) cast(e ast.Expression, to string) error {
	if err := v.VisitExpression(e); err != nil {
		return err
	}
	v.write(to)
	return nil
}

// castFor returns the cast for the operand compared against other.
func castFor(other ast.Expression) string {
	switch {
	case isJSONOperand(other):
		return "::jsonb"
	case isXMLValue(other):
		return "::text"
	}
	return ""
}

func isJSONOperand(e ast.Expression) bool {
	switch n := e.Node.(type) {
	case ast.Value:
		return n.IsJSON()
	case ast.Column:
		return n.IsJSON()
	}
	return false
}

func isXMLValue(e ast.Expression) bool {
	val, ok := e.Node.(ast.Value)
	return ok && val.IsXML()
}

func (v *Postgres) visitAggregateToString(arg ast.Expression) error {
	v.write("ARRAY_TO_STRING(ARRAY_AGG(")
	if err := v.VisitExpression(arg); err != nil {
		return err
	}
	v.write("), ',')")
	return nil
}

func (v *Postgres) visitJSONCompare(c ast.Compare) error {
	switch c.Op {
	case ast.OpJSONTypeEquals, ast.OpJSONTypeNotEquals:
		v.write("JSONB_TYPEOF(")
		if err := v.VisitExpression(c.Left); err != nil {
			return err
		}
		if c.Op == ast.OpJSONTypeEquals {
			v.write(") = ")
		} else {
			v.write(") <> ")
		}
		v.parameter(ast.Text(c.JSONType.String()))
		return nil
	}

	var op string
	switch c.Op {
	case ast.OpJSONArrayContains, ast.OpJSONArrayNotContains:
		op = " @> "
	case ast.OpJSONArrayBeginsWith, ast.OpJSONArrayNotBeginsWith:
		op = "->0 = "
	case ast.OpJSONArrayEndsInto, ast.OpJSONArrayNotEndsInto:
		op = "->-1 = "
	default:
		return sqlerr.Unsupported("JSON operator %d", c.Op)
	}
	negated := c.Op.Negated()
	if negated {
		v.write("NOT (")
	}
	if err := v.binary(c.Left, op, c.Right); err != nil {
		return err
	}
	if negated {
		v.writeByte(')')
	}
	return nil
}

func (v *Postgres) visitJSONExtract(f ast.Function) error {
	if !f.Path.IsArray {
		return sqlerr.Unsupported("string JSON paths")
	}
	v.writeByte('(')
	if err := v.VisitExpression(f.Args[0]); err != nil {
		return err
	}
	if f.AsText {
		v.write("#>>ARRAY[")
	} else {
		v.write("#>ARRAY[")
	}
	for i, key := range f.Path.Array {
		if i > 0 {
			v.write(", ")
		}
		v.parameter(ast.Text(key))
	}
	v.write("]::text[])")
	return nil
}

func (v *Postgres) visitTextSearch(f ast.Function) error {
	v.write("to_tsvector(concat_ws(' ', ")
	if err := v.expressions(f.Args, ", "); err != nil {
		return err
	}
	v.write("))")
	return nil
}

func (v *Postgres) visitMatches(c ast.Compare) error {
	negated := c.Op == ast.OpNotMatches
	if negated {
		v.write("NOT (")
	}
	if err := v.VisitExpression(c.Left); err != nil {
		return err
	}
	v.write(" @@ to_tsquery(")
	if err := v.VisitExpression(c.Right); err != nil {
		return err
	}
	v.writeByte(')')
	if negated {
		v.writeByte(')')
	}
	return nil
}

func (v *Postgres) visitRowToJSON(f ast.Function) error {
	if f.Table == nil {
		return sqlerr.Conversion("ROW_TO_JSON without a table")
	}
	v.write("ROW_TO_JSON(")
	v.qualifier(*f.Table)
	if f.Pretty {
		v.write(", true")
	}
	v.writeByte(')')
	return nil
}
