package ast

type UnionType int

const (
	UnionDistinct UnionType = iota
	UnionAll
)

// Union combines selects; Types[i] joins Selects[i] and Selects[i+1].
type Union struct {
	Selects []*Select
	Types   []UnionType
	// CTEs render once, ahead of the first operand.
	CTEs []CommonTableExpression
}

func NewUnion(first *Select) *Union { return &Union{Selects: []*Select{first}} }

func (u *Union) Type() NodeType         { return NodeUnion }
func (u *Union) Accept(v Visitor) error { return v.VisitUnion(u) }

// All appends s with UNION ALL.
func (u *Union) All(s *Select) *Union {
	u.Selects = append(u.Selects, s)
	u.Types = append(u.Types, UnionAll)
	return u
}

// Distinct appends s with a plain UNION.
func (u *Union) Distinct(s *Select) *Union {
	u.Selects = append(u.Selects, s)
	u.Types = append(u.Types, UnionDistinct)
	return u
}
