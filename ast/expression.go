package ast

import (
	"fmt"
	"reflect"
)

// Expression is the single node type through which projections, predicates
// and assignments flow. Alias is rendered as `AS alias` where the clause
// allows it.
type Expression struct {
	Node  Node
	Alias string
}

func (e Expression) Type() NodeType         { return NodeExpression }
func (e Expression) Accept(v Visitor) error { return v.VisitExpression(e) }

func (e Expression) As(alias string) Expression {
	e.Alias = alias
	return e
}

// Tree lifts the expression into a condition tree. An expression that already
// holds a tree is returned unchanged.
func (e Expression) Tree() ConditionTree {
	switch n := e.Node.(type) {
	case ConditionTree:
		return n
	case Expression:
		return n.Tree()
	}
	return Single(e)
}

// ExprOf converts x into an Expression. Nodes are wrapped, Go scalars become
// bound values and slices become rows. Anything else yields an invalid node
// which fails at build time with a conversion error.
func ExprOf(x any) Expression {
	switch t := x.(type) {
	case Expression:
		return t
	case *Select:
		if t == nil {
			return Expression{Node: Invalid{Err: fmt.Errorf("nil sub-select")}}
		}
		return Expression{Node: t}
	case *Union:
		if t == nil {
			return Expression{Node: Invalid{Err: fmt.Errorf("nil union")}}
		}
		return Expression{Node: t}
	case Compare:
		return Expression{Node: t.Tree()}
	case Node:
		return Expression{Node: t}
	case OrderDefinition:
		return t.Expr
	}
	if v, ok := ValueOf(x); ok {
		return Expression{Node: v}
	}
	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		row := make(Row, rv.Len())
		for i := range row {
			row[i] = ExprOf(rv.Index(i).Interface())
		}
		return Expression{Node: row}
	}
	return Expression{Node: Invalid{Err: fmt.Errorf("cannot use %T as an expression", x)}}
}

func (e Expression) compare(op CompareOp, right any) Compare {
	return Compare{Op: op, Left: e, Right: ExprOf(right)}
}

func (e Expression) Equals(x any) Compare              { return e.compare(OpEquals, x) }
func (e Expression) NotEquals(x any) Compare           { return e.compare(OpNotEquals, x) }
func (e Expression) LessThan(x any) Compare            { return e.compare(OpLessThan, x) }
func (e Expression) LessThanOrEquals(x any) Compare    { return e.compare(OpLessThanOrEquals, x) }
func (e Expression) GreaterThan(x any) Compare         { return e.compare(OpGreaterThan, x) }
func (e Expression) GreaterThanOrEquals(x any) Compare { return e.compare(OpGreaterThanOrEquals, x) }

// In accepts a Row, Values, sub-select, slice or any single expression.
func (e Expression) In(x any) Compare    { return e.compare(OpIn, x) }
func (e Expression) NotIn(x any) Compare { return e.compare(OpNotIn, x) }

// Like matches pattern anywhere in the value; the dialect wildcard is added at
// render time.
func (e Expression) Like(pattern string) Compare {
	return Compare{Op: OpLike, Left: e, Pattern: pattern}
}

func (e Expression) NotLike(pattern string) Compare {
	return Compare{Op: OpNotLike, Left: e, Pattern: pattern}
}

func (e Expression) BeginsWith(prefix string) Compare {
	return Compare{Op: OpBeginsWith, Left: e, Pattern: prefix}
}

func (e Expression) NotBeginsWith(prefix string) Compare {
	return Compare{Op: OpNotBeginsWith, Left: e, Pattern: prefix}
}

func (e Expression) EndsInto(suffix string) Compare {
	return Compare{Op: OpEndsInto, Left: e, Pattern: suffix}
}

func (e Expression) NotEndsInto(suffix string) Compare {
	return Compare{Op: OpNotEndsInto, Left: e, Pattern: suffix}
}

func (e Expression) IsNull() Compare    { return Compare{Op: OpIsNull, Left: e} }
func (e Expression) IsNotNull() Compare { return Compare{Op: OpIsNotNull, Left: e} }

func (e Expression) Between(low, high any) Compare {
	return Compare{Op: OpBetween, Left: e, Right: ExprOf(low), Upper: ExprOf(high)}
}

func (e Expression) NotBetween(low, high any) Compare {
	return Compare{Op: OpNotBetween, Left: e, Right: ExprOf(low), Upper: ExprOf(high)}
}

// CompareRaw renders `left op right` with op written verbatim, e.g. ILIKE.
func (e Expression) CompareRaw(op string, x any) Compare {
	c := e.compare(OpRaw, x)
	c.RawOp = op
	return c
}

func (e Expression) JSONArrayContains(x any) Compare {
	return e.compare(OpJSONArrayContains, x)
}

func (e Expression) JSONArrayNotContains(x any) Compare {
	return e.compare(OpJSONArrayNotContains, x)
}

func (e Expression) JSONArrayBeginsWith(x any) Compare {
	return e.compare(OpJSONArrayBeginsWith, x)
}

func (e Expression) JSONArrayNotBeginsWith(x any) Compare {
	return e.compare(OpJSONArrayNotBeginsWith, x)
}

func (e Expression) JSONArrayEndsInto(x any) Compare {
	return e.compare(OpJSONArrayEndsInto, x)
}

func (e Expression) JSONArrayNotEndsInto(x any) Compare {
	return e.compare(OpJSONArrayNotEndsInto, x)
}

func (e Expression) JSONTypeEquals(t JSONType) Compare {
	return Compare{Op: OpJSONTypeEquals, Left: e, JSONType: t}
}

func (e Expression) JSONTypeNotEquals(t JSONType) Compare {
	return Compare{Op: OpJSONTypeNotEquals, Left: e, JSONType: t}
}

// Matches is a full-text search of query against the expression, normally a
// TextSearch function.
func (e Expression) Matches(query string) Compare {
	return Compare{Op: OpMatches, Left: e, Right: Expression{Node: Text(query)}}
}

func (e Expression) NotMatches(query string) Compare {
	return Compare{Op: OpNotMatches, Left: e, Right: Expression{Node: Text(query)}}
}

// Operation is binary arithmetic, rendered parenthesized.
type Operation struct {
	Op    ArithOp
	Left  Expression
	Right Expression
}

type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
)

func (o ArithOp) String() string {
	return [...]string{"+", "-", "*", "/", "%"}[o]
}

func (o Operation) Type() NodeType         { return NodeOperation }
func (o Operation) Accept(v Visitor) error { return v.VisitOperation(o) }

func Add(l, r any) Expression { return arith(OpAdd, l, r) }
func Sub(l, r any) Expression { return arith(OpSub, l, r) }
func Mul(l, r any) Expression { return arith(OpMul, l, r) }
func Div(l, r any) Expression { return arith(OpDiv, l, r) }
func Rem(l, r any) Expression { return arith(OpRem, l, r) }

func arith(op ArithOp, l, r any) Expression {
	return Expression{Node: Operation{Op: op, Left: ExprOf(l), Right: ExprOf(r)}}
}
