package visitor

import (
	"math"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
	"github.com/songww/xiayu/sqlerr"
)

// MySQL renders for MySQL and, with the TiDB dialect, for TiDB.
type MySQL struct {
	base
}

func NewMySQL() *MySQL { return newMySQL(dialect.MySQL{}) }

// NewTiDB renders MySQL syntax under the TiDB name.
func NewTiDB() *MySQL { return newMySQL(dialect.TiDB{}) }

func newMySQL(d dialect.Dialect) *MySQL {
	v := &MySQL{}
	v.base.dialect = d
	v.base.outer = v
	return v
}

// MySQL has no OFFSET without LIMIT, so the largest unsigned limit stands in.
func (v *MySQL) visitLimitOffset(limit, offset *int64) error {
	if limit == nil {
		v.write(" LIMIT ")
		v.parameter(ast.Uint64(math.MaxUint64))
		v.write(" OFFSET ")
		v.parameter(ast.Int64(*offset))
		return nil
	}
	return v.base.visitLimitOffset(limit, offset)
}

// visitEquals compares JSON documents by mutual containment.
func (v *MySQL) visitEquals(left, right ast.Expression, not bool) error {
	if !isJSONOperand(left) && !isJSONOperand(right) {
		return v.base.visitEquals(left, right, not)
	}
	if not {
		v.write("NOT ")
	}
	v.write("(JSON_CONTAINS(")
	if err := v.binary(left, ", ", right); err != nil {
		return err
	}
	v.write(") AND JSON_CONTAINS(")
	if err := v.binary(right, ", ", left); err != nil {
		return err
	}
	v.write("))")
	return nil
}

func (v *MySQL) visitValuesTable(vals ast.Values) error {
	if err := vals.Err(); err != nil {
		return err
	}
	if len(vals.Rows) == 0 {
		return sqlerr.Conversion("empty values list")
	}
	v.write("(VALUES ")
	for i, r := range vals.Rows {
		if i > 0 {
			v.write(", ")
		}
		v.write("ROW")
		if err := v.VisitRow(r); err != nil {
			return err
		}
	}
	v.writeByte(')')
	return nil
}

func (v *MySQL) visitJSONCompare(c ast.Compare) error {
	switch c.Op {
	case ast.OpJSONTypeEquals, ast.OpJSONTypeNotEquals:
		return v.jsonType(c)
	}

	negated := c.Op.Negated()
	if negated {
		v.write("NOT ")
	}
	switch c.Op {
	case ast.OpJSONArrayContains, ast.OpJSONArrayNotContains:
		v.write("JSON_CONTAINS(")
		if err := v.binary(c.Left, ", ", c.Right); err != nil {
			return err
		}
		v.writeByte(')')
		return nil
	case ast.OpJSONArrayBeginsWith, ast.OpJSONArrayNotBeginsWith:
		v.write("(JSON_EXTRACT(")
		if err := v.VisitExpression(c.Left); err != nil {
			return err
		}
		v.write(", '$[0]')")
	case ast.OpJSONArrayEndsInto, ast.OpJSONArrayNotEndsInto:
		v.write("(JSON_EXTRACT(")
		if err := v.VisitExpression(c.Left); err != nil {
			return err
		}
		v.write(", CONCAT('$[', JSON_LENGTH(")
		if err := v.VisitExpression(c.Left); err != nil {
			return err
		}
		v.write(") - 1, ']'))")
	default:
		return sqlerr.Unsupported("JSON operator %d", c.Op)
	}
	v.write(" = CAST(")
	if err := v.VisitExpression(c.Right); err != nil {
		return err
	}
	v.write(" AS JSON))")
	return nil
}

// jsonType compares JSON_TYPE, which splits numbers into INTEGER and DOUBLE.
func (v *MySQL) jsonType(c ast.Compare) error {
	op, join := " = ", " OR "
	if c.Op == ast.OpJSONTypeNotEquals {
		op, join = " <> ", " AND "
	}
	names := []string{mysqlJSONType(c.JSONType)}
	if c.JSONType == ast.JSONTypeNumber {
		names = []string{"INTEGER", "DOUBLE"}
	}
	if len(names) > 1 {
		v.writeByte('(')
	}
	for i, name := range names {
		if i > 0 {
			v.write(join)
		}
		v.write("JSON_TYPE(")
		if err := v.VisitExpression(c.Left); err != nil {
			return err
		}
		v.writeByte(')')
		v.write(op)
		v.parameter(ast.Text(name))
	}
	if len(names) > 1 {
		v.writeByte(')')
	}
	return nil
}

func mysqlJSONType(t ast.JSONType) string {
	switch t {
	case ast.JSONTypeArray:
		return "ARRAY"
	case ast.JSONTypeObject:
		return "OBJECT"
	case ast.JSONTypeString:
		return "STRING"
	case ast.JSONTypeBoolean:
		return "BOOLEAN"
	case ast.JSONTypeNull:
		return "NULL"
	}
	return "INTEGER"
}

func (v *MySQL) visitJSONExtract(f ast.Function) error {
	if f.Path.IsArray {
		return sqlerr.Unsupported("array JSON paths")
	}
	if f.AsText {
		v.write("JSON_UNQUOTE(")
	}
	v.write("JSON_EXTRACT(")
	if err := v.VisitExpression(f.Args[0]); err != nil {
		return err
	}
	v.write(", ")
	v.parameter(ast.Text(f.Path.String))
	v.writeByte(')')
	if f.AsText {
		v.writeByte(')')
	}
	return nil
}
