package visitor

import (
	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
)

// SQLite renders for SQLite 3.
type SQLite struct {
	base
}

func NewSQLite() *SQLite {
	v := &SQLite{}
	v.base.dialect = dialect.SQLite{}
	v.base.outer = v
	return v
}

// A negative LIMIT means no limit.
func (v *SQLite) visitLimitOffset(limit, offset *int64) error {
	if limit == nil {
		v.write(" LIMIT ")
		v.parameter(ast.Int64(-1))
		v.write(" OFFSET ")
		v.parameter(ast.Int64(*offset))
		return nil
	}
	return v.base.visitLimitOffset(limit, offset)
}

// SQLite wants a VALUES clause on the right of a tuple IN.
func (v *SQLite) visitInValues(vals ast.Values) error {
	return v.VisitValues(vals)
}
