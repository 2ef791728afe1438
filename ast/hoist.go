package ast

import (
	"strconv"

	"github.com/songww/xiayu/sqlerr"
)

// HoistTupleSelects rewrites every `(a, b, ...) IN (SELECT x, y, ...)` into
//
//	a IN (SELECT x FROM cte_N WHERE y = b AND ...)
//
// and lifts the sub-select into `WITH cte_N AS (...)` on the statement
// itself: the select, or the insert, update, delete or union around it. The
// common table expressions of a union operand or an insert source move up to
// the statement too, since neither position accepts a WITH clause everywhere.
// CTEs are numbered in left-to-right pre-order, starting after the CTEs the
// statement already declares, and listed so that a CTE follows the ones its
// body refers to. The input is never modified and applying the rewrite twice
// changes nothing further.
func HoistTupleSelects(q Query) (Query, error) {
	switch t := q.(type) {
	case *Select:
		return hoistTop(t)
	case *Union:
		return hoistUnion(t)
	case *Insert:
		return hoistInsert(t)
	case *Update:
		return hoistUpdate(t)
	case *Delete:
		return hoistDelete(t)
	}
	return q, nil
}

func hoistUnion(u *Union) (*Union, error) {
	out := &Union{
		Types: append([]UnionType(nil), u.Types...),
		CTEs:  append([]CommonTableExpression(nil), u.CTEs...),
	}
	for _, s := range u.Selects {
		if s == nil {
			return nil, sqlerr.Conversion("nil select in union")
		}
		out.CTEs = append(out.CTEs, s.CTEs...)
	}
	h := &hoister{next: len(out.CTEs)}
	for _, s := range u.Selects {
		body, err := h.selectBody(s)
		if err != nil {
			return nil, err
		}
		body.CTEs = nil
		out.Selects = append(out.Selects, body)
	}
	out.CTEs = h.attach(out.CTEs)
	return out, nil
}

func hoistInsert(ins *Insert) (*Insert, error) {
	c := *ins
	c.CTEs = append([]CommonTableExpression(nil), ins.CTEs...)
	if ins.Source.Kind == SourceSelect && ins.Source.Select != nil {
		c.CTEs = append(c.CTEs, ins.Source.Select.CTEs...)
	}
	h := &hoister{next: len(c.CTEs)}

	var err error
	switch ins.Source.Kind {
	case SourceRow:
		if c.Source.Row, err = h.row(ins.Source.Row); err != nil {
			return nil, err
		}
	case SourceValues:
		rows := make([]Row, len(ins.Source.Values.Rows))
		for i, r := range ins.Source.Values.Rows {
			if rows[i], err = h.row(r); err != nil {
				return nil, err
			}
		}
		c.Source.Values.Rows = rows
	case SourceSelect:
		if ins.Source.Select == nil {
			return ins, nil
		}
		body, err := h.selectBody(ins.Source.Select)
		if err != nil {
			return nil, err
		}
		body.CTEs = nil
		c.Source.Select = body
	}
	c.CTEs = h.attach(c.CTEs)
	return &c, nil
}

func hoistUpdate(u *Update) (*Update, error) {
	c := *u
	h := &hoister{next: len(u.CTEs)}
	c.Assignments = make([]Assignment, len(u.Assignments))
	for i, a := range u.Assignments {
		var err error
		if a.Value, err = h.expr(a.Value); err != nil {
			return nil, err
		}
		c.Assignments[i] = a
	}
	var err error
	if c.Conditions, err = h.tree(u.Conditions); err != nil {
		return nil, err
	}
	c.CTEs = h.attach(append([]CommonTableExpression(nil), u.CTEs...))
	return &c, nil
}

func hoistDelete(d *Delete) (*Delete, error) {
	c := *d
	h := &hoister{next: len(d.CTEs)}
	var err error
	if c.Conditions, err = h.tree(d.Conditions); err != nil {
		return nil, err
	}
	c.CTEs = h.attach(append([]CommonTableExpression(nil), d.CTEs...))
	return &c, nil
}

type hoister struct {
	next int
	ctes []CommonTableExpression
}

func hoistTop(s *Select) (*Select, error) {
	if s == nil {
		return nil, nil
	}
	h := &hoister{next: len(s.CTEs)}
	out, err := h.selectBody(s)
	if err != nil {
		return nil, err
	}
	out.CTEs = h.attach(out.CTEs)
	return out, nil
}

// attach appends the hoisted CTEs to ctes, leaving nil as nil.
func (h *hoister) attach(ctes []CommonTableExpression) []CommonTableExpression {
	if len(h.ctes) == 0 && len(ctes) == 0 {
		return nil
	}
	return append(ctes, h.ctes...)
}

func (h *hoister) row(r Row) (Row, error) {
	if r == nil {
		return nil, nil
	}
	out := make(Row, len(r))
	for i, x := range r {
		var err error
		if out[i], err = h.expr(x); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// selectBody rewrites the clauses of s that may hold predicates. CTEs found
// anywhere below are collected on h rather than on the nested select.
func (h *hoister) selectBody(s *Select) (*Select, error) {
	out := s.clone()
	var err error
	for i, c := range out.Columns {
		if out.Columns[i], err = h.expr(c); err != nil {
			return nil, err
		}
	}
	for i, t := range out.Tables {
		if out.Tables[i], err = h.table(t); err != nil {
			return nil, err
		}
	}
	for i, j := range out.Joins {
		if out.Joins[i], err = h.join(j); err != nil {
			return nil, err
		}
	}
	if out.Conditions, err = h.tree(out.Conditions); err != nil {
		return nil, err
	}
	if out.HavingConditions, err = h.tree(out.HavingConditions); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *hoister) table(t Table) (Table, error) {
	var err error
	if t.Kind == TableQuery && t.Query != nil {
		if t.Query, err = h.selectBody(t.Query); err != nil {
			return t, err
		}
	}
	if len(t.Joins) > 0 {
		joins := make([]Join, len(t.Joins))
		for i, j := range t.Joins {
			if joins[i], err = h.join(j); err != nil {
				return t, err
			}
		}
		t.Joins = joins
	}
	return t, nil
}

func (h *hoister) join(j Join) (Join, error) {
	var err error
	if j.Table, err = h.table(j.Table); err != nil {
		return j, err
	}
	j.Conditions, err = h.tree(j.Conditions)
	return j, err
}

func (h *hoister) tree(t ConditionTree) (ConditionTree, error) {
	if len(t.Exprs) == 0 {
		return t, nil
	}
	exprs := make([]Expression, len(t.Exprs))
	for i, e := range t.Exprs {
		var err error
		if exprs[i], err = h.expr(e); err != nil {
			return t, err
		}
	}
	t.Exprs = exprs
	return t, nil
}

func (h *hoister) expr(e Expression) (Expression, error) {
	var err error
	switch n := e.Node.(type) {
	case ConditionTree:
		e.Node, err = h.tree(n)
	case Compare:
		e.Node, err = h.compare(n)
	case *Select:
		e.Node, err = h.selectBody(n)
	case Expression:
		e.Node, err = h.expr(n)
	case Row:
		e.Node, err = h.row(n)
	}
	return e, err
}

func (h *hoister) compare(c Compare) (Compare, error) {
	row, isRow := c.Left.Node.(Row)
	sel, isSelect := c.Right.Node.(*Select)
	if (c.Op == OpIn || c.Op == OpNotIn) && isRow && isSelect && len(row) > 1 {
		return h.lift(c.Op, row, sel)
	}

	var err error
	if c.Left, err = h.expr(c.Left); err != nil {
		return c, err
	}
	if c.Right, err = h.expr(c.Right); err != nil {
		return c, err
	}
	return c, nil
}

func (h *hoister) lift(op CompareOp, row Row, sel *Select) (Compare, error) {
	if len(sel.Columns) != len(row) {
		return Compare{}, sqlerr.Conversion("tuple of %d columns compared with a select of %d columns", len(row), len(sel.Columns))
	}
	names := make([]string, len(sel.Columns))
	for i, c := range sel.Columns {
		name, ok := projectionName(c)
		if !ok {
			return Compare{}, sqlerr.Conversion("select column %d needs a name or alias to be hoisted into a common table expression", i)
		}
		names[i] = name
	}

	// Pre-order: the outer CTE takes its number before anything inside it.
	name := "cte_" + strconv.Itoa(h.next)
	h.next++

	body, err := h.selectBody(sel)
	if err != nil {
		return Compare{}, err
	}
	h.ctes = append(h.ctes, CommonTableExpression{Name: name, Query: body})

	cte := NewTable(name)
	inner := NewSelect().From(cte).Column(Col(names[0]))
	for i := 1; i < len(row); i++ {
		inner.AndWhere(Col(names[i]).Equals(row[i]))
	}
	return Compare{Op: op, Left: row[0], Right: Expression{Node: inner}}, nil
}

func projectionName(e Expression) (string, bool) {
	if e.Alias != "" {
		return e.Alias, true
	}
	switch n := e.Node.(type) {
	case Column:
		if n.Alias != "" {
			return n.Alias, true
		}
		return n.Name, true
	case Expression:
		return projectionName(n)
	}
	return "", false
}
