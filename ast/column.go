package ast

type FamilyKind int

const (
	FamilyText FamilyKind = iota
	FamilyInt
	FamilyFloat
	FamilyDouble
	FamilyDecimal
	FamilyBoolean
	FamilyUUID
	FamilyDateTime
	FamilyBytes
	FamilyJSON
	FamilyXML
)

// TypeFamily is a hint of the column's database type. Length applies to text
// and bytes, Max requests the unbounded variant, Precision and Scale apply to
// decimals.
type TypeFamily struct {
	Kind      FamilyKind
	Length    int
	Max       bool
	Precision int
	Scale     int
}

// ColumnDefault is either a provided value or a database generated one.
type ColumnDefault struct {
	Generated bool
	Value     Value
}

type Column struct {
	Name    string
	Table   *Table
	Alias   string
	Default *ColumnDefault
	Family  *TypeFamily
}

func Col(name string) Column { return Column{Name: name} }

func (c Column) Type() NodeType         { return NodeColumn }
func (c Column) Accept(v Visitor) error { return v.VisitColumn(c) }

// WithTable qualifies the column with a copy of t.
func (c Column) WithTable(t Table) Column {
	t.Joins = nil
	t.Indexes = nil
	c.Table = &t
	return c
}

// Bare drops the table qualifier.
func (c Column) Bare() Column {
	c.Table = nil
	c.Alias = ""
	return c
}

func (c Column) As(alias string) Column {
	c.Alias = alias
	return c
}

func (c Column) WithDefault(v any) Column {
	c.Default = &ColumnDefault{Value: valueOrNull(v)}
	return c
}

// WithGeneratedDefault marks the column as filled by the database.
func (c Column) WithGeneratedDefault() Column {
	c.Default = &ColumnDefault{Generated: true}
	return c
}

func (c Column) WithFamily(f TypeFamily) Column {
	c.Family = &f
	return c
}

// IsJSON reports whether the column is declared with a JSON type family.
func (c Column) IsJSON() bool { return c.Family != nil && c.Family.Kind == FamilyJSON }
func (c Column) IsXML() bool  { return c.Family != nil && c.Family.Kind == FamilyXML }

func (c Column) Expr() Expression { return Expression{Node: c} }

func (c Column) Asc() OrderDefinition  { return OrderDefinition{Expr: c.Expr(), Order: OrderAsc} }
func (c Column) Desc() OrderDefinition { return OrderDefinition{Expr: c.Expr(), Order: OrderDesc} }

func (c Column) Ordering() OrderDefinition { return OrderDefinition{Expr: c.Expr()} }

func (c Column) Equals(x any) Compare              { return c.Expr().Equals(x) }
func (c Column) NotEquals(x any) Compare           { return c.Expr().NotEquals(x) }
func (c Column) LessThan(x any) Compare            { return c.Expr().LessThan(x) }
func (c Column) LessThanOrEquals(x any) Compare    { return c.Expr().LessThanOrEquals(x) }
func (c Column) GreaterThan(x any) Compare         { return c.Expr().GreaterThan(x) }
func (c Column) GreaterThanOrEquals(x any) Compare { return c.Expr().GreaterThanOrEquals(x) }
func (c Column) In(x any) Compare                  { return c.Expr().In(x) }
func (c Column) NotIn(x any) Compare               { return c.Expr().NotIn(x) }
func (c Column) Like(p string) Compare             { return c.Expr().Like(p) }
func (c Column) NotLike(p string) Compare          { return c.Expr().NotLike(p) }
func (c Column) BeginsWith(p string) Compare       { return c.Expr().BeginsWith(p) }
func (c Column) NotBeginsWith(p string) Compare    { return c.Expr().NotBeginsWith(p) }
func (c Column) EndsInto(p string) Compare         { return c.Expr().EndsInto(p) }
func (c Column) NotEndsInto(p string) Compare      { return c.Expr().NotEndsInto(p) }
func (c Column) IsNull() Compare                   { return c.Expr().IsNull() }
func (c Column) IsNotNull() Compare                { return c.Expr().IsNotNull() }
func (c Column) Between(lo, hi any) Compare        { return c.Expr().Between(lo, hi) }
func (c Column) NotBetween(lo, hi any) Compare     { return c.Expr().NotBetween(lo, hi) }

func (c Column) CompareRaw(op string, x any) Compare { return c.Expr().CompareRaw(op, x) }

func (c Column) JSONArrayContains(x any) Compare      { return c.Expr().JSONArrayContains(x) }
func (c Column) JSONArrayNotContains(x any) Compare   { return c.Expr().JSONArrayNotContains(x) }
func (c Column) JSONArrayBeginsWith(x any) Compare    { return c.Expr().JSONArrayBeginsWith(x) }
func (c Column) JSONArrayNotBeginsWith(x any) Compare { return c.Expr().JSONArrayNotBeginsWith(x) }
func (c Column) JSONArrayEndsInto(x any) Compare      { return c.Expr().JSONArrayEndsInto(x) }
func (c Column) JSONArrayNotEndsInto(x any) Compare   { return c.Expr().JSONArrayNotEndsInto(x) }
func (c Column) JSONTypeEquals(t JSONType) Compare    { return c.Expr().JSONTypeEquals(t) }
func (c Column) JSONTypeNotEquals(t JSONType) Compare { return c.Expr().JSONTypeNotEquals(t) }

// valueOrNull converts a Go scalar into a Value, falling back to a text NULL
// for unsupported types.
func valueOrNull(x any) Value {
	if v, ok := ValueOf(x); ok {
		return v
	}
	return Null(KindText)
}

// columnOf accepts a Column or a column name.
func columnOf(x any) (Column, bool) {
	switch c := x.(type) {
	case Column:
		return c, true
	case string:
		return Col(c), true
	}
	return Column{}, false
}

// Row is a tuple of expressions.
type Row []Expression

// NewRow converts each item with ExprOf.
func NewRow(items ...any) Row {
	row := make(Row, len(items))
	for i, x := range items {
		row[i] = ExprOf(x)
	}
	return row
}

func (r Row) Type() NodeType         { return NodeRow }
func (r Row) Accept(v Visitor) error { return v.VisitRow(r) }
func (r Row) Expr() Expression       { return Expression{Node: r} }

func (r Row) Equals(x any) Compare    { return r.Expr().Equals(x) }
func (r Row) NotEquals(x any) Compare { return r.Expr().NotEquals(x) }
func (r Row) In(x any) Compare        { return r.Expr().In(x) }
func (r Row) NotIn(x any) Compare     { return r.Expr().NotIn(x) }

// Values is an in-memory table of equally wide rows. NewValues validates the
// width; a mismatch is reported when the query is built.
type Values struct {
	Rows []Row
	err  error
}

func NewValues(rows ...Row) Values {
	vals := Values{Rows: rows}
	for i, r := range rows {
		if len(r) != len(rows[0]) {
			vals.err = errRowWidth(i, len(r), len(rows[0]))
			break
		}
	}
	return vals
}

func (v Values) Err() error { return v.err }

func (v Values) Width() int {
	if len(v.Rows) == 0 {
		return 0
	}
	return len(v.Rows[0])
}

func (v Values) Type() NodeType           { return NodeValues }
func (v Values) Accept(vis Visitor) error { return vis.VisitValues(v) }
func (v Values) Expr() Expression         { return Expression{Node: v} }
