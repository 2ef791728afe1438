package ast

type TreeKind int

const (
	// TreeNoCondition renders as 1=1 and is absorbed by And/Or.
	TreeNoCondition TreeKind = iota
	TreeNegative
	TreeSingle
	TreeAnd
	TreeOr
	TreeNot
)

// Conditional is anything usable as a predicate.
type Conditional interface {
	Tree() ConditionTree
}

// ConditionTree is a boolean predicate. Single and Not hold exactly one
// expression in Exprs.
type ConditionTree struct {
	Kind  TreeKind
	Exprs []Expression
}

func (t ConditionTree) Type() NodeType         { return NodeConditionTree }
func (t ConditionTree) Accept(v Visitor) error { return v.VisitConditionTree(t) }
func (t ConditionTree) Tree() ConditionTree    { return t }

// IsEmpty reports whether the tree is NoCondition.
func (t ConditionTree) IsEmpty() bool { return t.Kind == TreeNoCondition }

func NoCondition() ConditionTree       { return ConditionTree{} }
func NegativeCondition() ConditionTree { return ConditionTree{Kind: TreeNegative} }

func Single(e Expression) ConditionTree {
	return ConditionTree{Kind: TreeSingle, Exprs: []Expression{e}}
}

func Not(c Conditional) ConditionTree {
	return ConditionTree{Kind: TreeNot, Exprs: []Expression{treeExpr(c)}}
}

func And(conds ...Conditional) ConditionTree { return group(TreeAnd, conds) }
func Or(conds ...Conditional) ConditionTree  { return group(TreeOr, conds) }

func group(kind TreeKind, conds []Conditional) ConditionTree {
	exprs := make([]Expression, 0, len(conds))
	for _, c := range conds {
		exprs = append(exprs, treeExpr(c))
	}
	return ConditionTree{Kind: kind, Exprs: exprs}
}

func treeExpr(c Conditional) Expression {
	return Expression{Node: treeOf(c)}
}

// treeOf is c.Tree() with nil read as NoCondition.
func treeOf(c Conditional) ConditionTree {
	if c == nil {
		return NoCondition()
	}
	return c.Tree()
}

// And appends c when t is already an And, otherwise nests both under a new
// And. NoCondition on either side is absorbed.
func (t ConditionTree) And(c Conditional) ConditionTree { return t.join(TreeAnd, c) }

// Or is the disjunctive counterpart of And.
func (t ConditionTree) Or(c Conditional) ConditionTree { return t.join(TreeOr, c) }

func (t ConditionTree) Not() ConditionTree { return Not(t) }

func (t ConditionTree) join(kind TreeKind, c Conditional) ConditionTree {
	other := treeOf(c)
	switch {
	case other.Kind == TreeNoCondition:
		return t
	case t.Kind == TreeNoCondition:
		return other
	case t.Kind == kind:
		exprs := make([]Expression, len(t.Exprs), len(t.Exprs)+1)
		copy(exprs, t.Exprs)
		return ConditionTree{Kind: kind, Exprs: append(exprs, Expression{Node: other})}
	}
	return ConditionTree{Kind: kind, Exprs: []Expression{{Node: t}, {Node: other}}}
}
