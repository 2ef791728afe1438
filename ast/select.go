package ast

type Order int

const (
	OrderNone Order = iota
	OrderAsc
	OrderDesc
)

type OrderDefinition struct {
	Expr  Expression
	Order Order
}

func (o OrderDefinition) Ordering() OrderDefinition { return o }

// Orderable is accepted by ORDER BY: columns, expressions and explicit
// definitions built with Asc/Desc.
type Orderable interface {
	Ordering() OrderDefinition
}

func (e Expression) Ordering() OrderDefinition { return OrderDefinition{Expr: e} }
func (e Expression) Asc() OrderDefinition      { return OrderDefinition{Expr: e, Order: OrderAsc} }
func (e Expression) Desc() OrderDefinition     { return OrderDefinition{Expr: e, Order: OrderDesc} }

// CommonTableExpression is one entry of a WITH list.
type CommonTableExpression struct {
	Name    string
	Columns []string
	Query   Query
}

type Select struct {
	IsDistinct       bool
	CTEs             []CommonTableExpression
	Tables           []Table
	Columns          []Expression
	Joins            []Join
	Conditions       ConditionTree
	Grouping         []Expression
	HavingConditions ConditionTree
	Ordering         []OrderDefinition
	LimitRows        *int64
	OffsetRows       *int64

	err error
}

func NewSelect() *Select { return &Select{} }

// SelectFrom starts a select over a Table, a table name or a sub-select.
func SelectFrom(table any) *Select { return NewSelect().From(table) }

func (s *Select) Type() NodeType         { return NodeSelect }
func (s *Select) Accept(v Visitor) error { return v.VisitSelect(s) }

// Err returns the first error recorded while building.
func (s *Select) Err() error { return s.err }

func (s *Select) fail(err error) *Select {
	if s.err == nil {
		s.err = err
	}
	return s
}

// From adds another FROM target; several targets are comma-joined.
func (s *Select) From(table any) *Select {
	t, ok := tableOf(table)
	if !ok {
		return s.fail(errNotATable(table))
	}
	s.Tables = append(s.Tables, t)
	return s
}

// Column adds projections. Strings are column names; everything else goes
// through ExprOf.
func (s *Select) Column(cols ...any) *Select {
	for _, c := range cols {
		if name, ok := c.(string); ok {
			s.Columns = append(s.Columns, Col(name).Expr())
			continue
		}
		s.Columns = append(s.Columns, ExprOf(c))
	}
	return s
}

// Value adds a projected value. Strings are bound as text, unlike Column.
func (s *Select) Value(x any) *Select {
	s.Columns = append(s.Columns, ExprOf(x))
	return s
}

func (s *Select) Distinct() *Select {
	s.IsDistinct = true
	return s
}

// Where replaces the WHERE tree.
func (s *Select) Where(c Conditional) *Select {
	s.Conditions = treeOf(c)
	return s
}

func (s *Select) AndWhere(c Conditional) *Select {
	s.Conditions = s.Conditions.And(c)
	return s
}

func (s *Select) OrWhere(c Conditional) *Select {
	s.Conditions = s.Conditions.Or(c)
	return s
}

func (s *Select) InnerJoin(j JoinData) *Select { return s.join(JoinInner, j) }
func (s *Select) LeftJoin(j JoinData) *Select  { return s.join(JoinLeft, j) }
func (s *Select) RightJoin(j JoinData) *Select { return s.join(JoinRight, j) }
func (s *Select) FullJoin(j JoinData) *Select  { return s.join(JoinFull, j) }

func (s *Select) join(kind JoinKind, j JoinData) *Select {
	s.Joins = append(s.Joins, Join{Kind: kind, JoinData: j})
	return s
}

func (s *Select) GroupBy(cols ...any) *Select {
	for _, c := range cols {
		if name, ok := c.(string); ok {
			s.Grouping = append(s.Grouping, Col(name).Expr())
			continue
		}
		s.Grouping = append(s.Grouping, ExprOf(c))
	}
	return s
}

func (s *Select) Having(c Conditional) *Select {
	s.HavingConditions = s.HavingConditions.And(c)
	return s
}

func (s *Select) OrderBy(items ...Orderable) *Select {
	for _, o := range items {
		s.Ordering = append(s.Ordering, o.Ordering())
	}
	return s
}

func (s *Select) Limit(n int64) *Select {
	s.LimitRows = &n
	return s
}

func (s *Select) Offset(n int64) *Select {
	s.OffsetRows = &n
	return s
}

// With adds a common table expression rendered ahead of the SELECT.
func (s *Select) With(name string, q Query, columns ...string) *Select {
	s.CTEs = append(s.CTEs, CommonTableExpression{Name: name, Columns: columns, Query: q})
	return s
}

// clone copies s deep enough that rewriting its slices leaves s untouched.
func (s *Select) clone() *Select {
	c := *s
	c.CTEs = append([]CommonTableExpression(nil), s.CTEs...)
	c.Tables = append([]Table(nil), s.Tables...)
	c.Columns = append([]Expression(nil), s.Columns...)
	c.Joins = append([]Join(nil), s.Joins...)
	c.Grouping = append([]Expression(nil), s.Grouping...)
	c.Ordering = append([]OrderDefinition(nil), s.Ordering...)
	return &c
}
