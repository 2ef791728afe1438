package schema

import "github.com/songww/xiayu/ast"

// ColumnOptions describes one mapped column. Values are immutable once an
// Entity is built; Column and Table are derived from them.
type ColumnOptions struct {
	Name          string
	TableName     string
	PrimaryKey    bool
	AutoIncrement bool
	// ForeignKey references another column as "table.column".
	ForeignKey string
	Comment    string
	Unique     bool
	Length     int
	Quote      bool
	// Default is the tag text, parsed per type family when the column is built.
	Default *string
}

// Table returns the bare table the column belongs to.
func (o ColumnOptions) Table() ast.Table { return ast.NewTable(o.TableName) }

// Column returns the column qualified with its table, without a family or
// default.
func (o ColumnOptions) Column() ast.Column { return o.Table().Col(o.Name) }

// References splits ForeignKey into table and column.
func (o ColumnOptions) References() (table, column string, ok bool) {
	for i := len(o.ForeignKey) - 1; i >= 0; i-- {
		if o.ForeignKey[i] == '.' {
			return o.ForeignKey[:i], o.ForeignKey[i+1:], i > 0 && i < len(o.ForeignKey)-1
		}
	}
	return "", "", false
}
