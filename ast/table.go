package ast

type TableKind int

const (
	TableNamed TableKind = iota
	TableQuery
	TableValues
)

// IndexDefinition is a declared unique index. Only the conflict lowering into
// MERGE reads it; normal rendering ignores indexes.
type IndexDefinition struct {
	Columns []Column
}

func (i IndexDefinition) Compound() bool { return len(i.Columns) > 1 }

type Table struct {
	Kind     TableKind
	Name     string
	Query    *Select
	Values   Values
	Alias    string
	Database string
	Joins    []Join
	Indexes  []IndexDefinition
}

func NewTable(name string) Table { return Table{Kind: TableNamed, Name: name} }

// TableFromSelect uses a sub-select as a derived table. Most databases need
// an alias on it.
func TableFromSelect(s *Select) Table { return Table{Kind: TableQuery, Query: s} }

func TableFromValues(v Values) Table { return Table{Kind: TableValues, Values: v} }

func (t Table) Type() NodeType         { return NodeTable }
func (t Table) Accept(v Visitor) error { return v.VisitTable(t) }

func (t Table) As(alias string) Table {
	t.Alias = alias
	return t
}

func (t Table) InDatabase(db string) Table {
	t.Database = db
	return t
}

// Col returns a column qualified with this table.
func (t Table) Col(name string) Column { return Col(name).WithTable(t) }

// Asterisk selects every column of the table.
func (t Table) Asterisk() Expression {
	c := t
	c.Joins = nil
	c.Indexes = nil
	return Expression{Node: Asterisk{Table: &c}}
}

// AddUniqueIndex declares a unique index over the given columns or column
// names. Columns are qualified with the table.
func (t Table) AddUniqueIndex(cols ...any) Table {
	idx := IndexDefinition{Columns: make([]Column, 0, len(cols))}
	for _, x := range cols {
		c, ok := columnOf(x)
		if !ok {
			continue
		}
		if c.Table == nil {
			c = c.WithTable(t)
		}
		idx.Columns = append(idx.Columns, c)
	}
	indexes := make([]IndexDefinition, len(t.Indexes), len(t.Indexes)+1)
	copy(indexes, t.Indexes)
	t.Indexes = append(indexes, idx)
	return t
}

// IndexColumn finds a column declared in one of the table's indexes.
func (t Table) IndexColumn(name string) (Column, bool) {
	for _, idx := range t.Indexes {
		for _, c := range idx.Columns {
			if c.Name == name {
				return c, true
			}
		}
	}
	return Column{}, false
}

func (t Table) On(c Conditional) JoinData {
	return JoinData{Table: t, Conditions: treeOf(c)}
}

// LeftJoin attaches a join to this table. Table joins render right after the
// table itself, before any later FROM entry.
func (t Table) LeftJoin(j JoinData) Table  { return t.join(JoinLeft, j) }
func (t Table) InnerJoin(j JoinData) Table { return t.join(JoinInner, j) }
func (t Table) RightJoin(j JoinData) Table { return t.join(JoinRight, j) }
func (t Table) FullJoin(j JoinData) Table  { return t.join(JoinFull, j) }

func (t Table) join(kind JoinKind, j JoinData) Table {
	joins := make([]Join, len(t.Joins), len(t.Joins)+1)
	copy(joins, t.Joins)
	t.Joins = append(joins, Join{Kind: kind, JoinData: j})
	return t
}

// tableOf accepts a Table or a table name.
func tableOf(x any) (Table, bool) {
	switch t := x.(type) {
	case Table:
		return t, true
	case string:
		return NewTable(t), true
	case *Select:
		return TableFromSelect(t), true
	}
	return Table{}, false
}
