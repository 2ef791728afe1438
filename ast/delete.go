package ast

type Delete struct {
	Table      Table
	Conditions ConditionTree
	CTEs       []CommonTableExpression

	err error
}

func DeleteFrom(table any) *Delete {
	d := &Delete{}
	t, ok := tableOf(table)
	if !ok {
		d.err = errNotATable(table)
		return d
	}
	d.Table = t
	return d
}

func (d *Delete) Type() NodeType         { return NodeDelete }
func (d *Delete) Accept(v Visitor) error { return v.VisitDelete(d) }
func (d *Delete) Err() error             { return d.err }

func (d *Delete) Where(c Conditional) *Delete {
	d.Conditions = treeOf(c)
	return d
}

func (d *Delete) AndWhere(c Conditional) *Delete {
	d.Conditions = d.Conditions.And(c)
	return d
}
