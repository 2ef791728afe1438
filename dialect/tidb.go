package dialect

import "github.com/songww/xiayu/ast"

// TiDB speaks the MySQL syntax and renders with the MySQL visitor.
type TiDB struct {
	MySQL
}

func NewTiDBDialect() Dialect { return TiDB{} }

var tidbLiterals = func() literalStyle {
	s := mysqlLiterals
	s.name = NameTiDB
	return s
}()

func (TiDB) Name() string { return NameTiDB }

func (TiDB) RenderValue(v ast.Value) (string, error) { return tidbLiterals.render(v) }
