package ast

type Assignment struct {
	Column Column
	Value  Expression
}

type Update struct {
	Table       Table
	Assignments []Assignment
	Conditions  ConditionTree
	CTEs        []CommonTableExpression

	err error
}

func UpdateTable(table any) *Update {
	u := &Update{}
	t, ok := tableOf(table)
	if !ok {
		u.err = errNotATable(table)
		return u
	}
	u.Table = t
	return u
}

func (u *Update) Type() NodeType         { return NodeUpdate }
func (u *Update) Accept(v Visitor) error { return v.VisitUpdate(u) }
func (u *Update) Err() error             { return u.err }

// Set appends an assignment; the column renders unqualified.
func (u *Update) Set(col any, x any) *Update {
	c, ok := columnOf(col)
	if !ok {
		if u.err == nil {
			u.err = errNotAColumn(col)
		}
		return u
	}
	u.Assignments = append(u.Assignments, Assignment{Column: c.Bare(), Value: ExprOf(x)})
	return u
}

func (u *Update) Where(c Conditional) *Update {
	u.Conditions = treeOf(c)
	return u
}

func (u *Update) AndWhere(c Conditional) *Update {
	u.Conditions = u.Conditions.And(c)
	return u
}
