package ast

type OnConflict int

const (
	ConflictNone OnConflict = iota
	// ConflictDoNothing skips rows that violate a unique constraint.
	ConflictDoNothing
)

type SourceKind int

const (
	SourceRow SourceKind = iota
	SourceValues
	SourceSelect
)

// InsertSource holds exactly one of Row, Values or Select, chosen by Kind.
type InsertSource struct {
	Kind   SourceKind
	Row    Row
	Values Values
	Select *Select
}

type Insert struct {
	Table            Table
	Columns          []Column
	Source           InsertSource
	Conflict         OnConflict
	ReturningColumns []Column
	// CTEs render as a WITH clause ahead of INSERT.
	CTEs []CommonTableExpression

	err error
}

// SingleInsert inserts one row built with Value. With no values it renders
// DEFAULT VALUES.
func SingleInsert(table any) *Insert {
	ins := &Insert{Source: InsertSource{Kind: SourceRow}}
	return ins.into(table)
}

// MultiInsert inserts rows added with Values, all of len(cols) width.
func MultiInsert(table any, cols ...any) *Insert {
	ins := &Insert{Source: InsertSource{Kind: SourceValues}}
	ins.into(table)
	ins.addColumns(cols)
	return ins
}

// InsertFromSelect inserts the result of sel into the given columns.
func InsertFromSelect(table any, cols []any, sel *Select) *Insert {
	ins := &Insert{Source: InsertSource{Kind: SourceSelect, Select: sel}}
	ins.into(table)
	ins.addColumns(cols)
	return ins
}

func (i *Insert) Type() NodeType         { return NodeInsert }
func (i *Insert) Accept(v Visitor) error { return v.VisitInsert(i) }
func (i *Insert) Err() error             { return i.err }

func (i *Insert) fail(err error) *Insert {
	if i.err == nil {
		i.err = err
	}
	return i
}

func (i *Insert) into(table any) *Insert {
	t, ok := tableOf(table)
	if !ok {
		return i.fail(errNotATable(table))
	}
	i.Table = t
	return i
}

func (i *Insert) column(x any) (Column, bool) {
	c, ok := columnOf(x)
	if !ok {
		i.fail(errNotAColumn(x))
		return Column{}, false
	}
	if c.Table == nil {
		c = c.WithTable(i.Table)
	}
	return c, true
}

func (i *Insert) addColumns(cols []any) {
	for _, x := range cols {
		if c, ok := i.column(x); ok {
			i.Columns = append(i.Columns, c)
		}
	}
}

// Value sets a column of a single-row insert.
func (i *Insert) Value(col any, x any) *Insert {
	if i.Source.Kind != SourceRow {
		return i.fail(errSourceKind("Value", i.Source.Kind))
	}
	c, ok := i.column(col)
	if !ok {
		return i
	}
	i.Columns = append(i.Columns, c)
	i.Source.Row = append(i.Source.Row, ExprOf(x))
	return i
}

// Values appends one row to a multi-row insert.
func (i *Insert) Values(xs ...any) *Insert {
	if i.Source.Kind != SourceValues {
		return i.fail(errSourceKind("Values", i.Source.Kind))
	}
	if len(xs) != len(i.Columns) {
		return i.fail(errRowWidth(len(i.Source.Values.Rows), len(xs), len(i.Columns)))
	}
	i.Source.Values.Rows = append(i.Source.Values.Rows, NewRow(xs...))
	return i
}

func (i *Insert) OnConflict(c OnConflict) *Insert {
	i.Conflict = c
	return i
}

// Returning requests the given columns back from the inserted rows.
func (i *Insert) Returning(cols ...any) *Insert {
	for _, x := range cols {
		if c, ok := i.column(x); ok {
			i.ReturningColumns = append(i.ReturningColumns, c)
		}
	}
	return i
}

// IsEmpty reports whether the insert has no columns, rendering DEFAULT VALUES.
func (i *Insert) IsEmpty() bool {
	return len(i.Columns) == 0 && i.Source.Kind == SourceRow
}
