// Package ast holds the in-memory representation of a query before it is
// rendered into SQL text by a dialect visitor.
package ast

type NodeType int

const (
	NodeSelect NodeType = iota
	NodeInsert
	NodeUpdate
	NodeDelete
	NodeUnion
	NodeMerge
	NodeRawQuery
	NodeExpression
	NodeValue
	NodeRaw
	NodeColumn
	NodeTable
	NodeRow
	NodeValues
	NodeFunction
	NodeConditionTree
	NodeCompare
	NodeOperation
	NodeAsterisk
	NodeDefault
	NodeInvalid
)

type Node interface {
	Type() NodeType
	Accept(v Visitor) error
}

// Query is a complete statement accepted by a visitor's Build.
type Query interface {
	Node
	isQuery()
}

func (*Select) isQuery()  {}
func (*Insert) isQuery()  {}
func (*Update) isQuery()  {}
func (*Delete) isQuery()  {}
func (*Union) isQuery()   {}
func (*Merge) isQuery()   {}
func (RawQuery) isQuery() {}

// RawQuery is passed through verbatim together with its own parameters.
type RawQuery struct {
	SQL    string
	Params []Value
}

func NewRawQuery(sql string, params ...Value) RawQuery {
	return RawQuery{SQL: sql, Params: params}
}

func (r RawQuery) Type() NodeType         { return NodeRawQuery }
func (r RawQuery) Accept(v Visitor) error { return v.VisitRawQuery(r) }

// Asterisk renders `*`, or `table.*` when bound to a table.
type Asterisk struct {
	Table *Table
}

func (a Asterisk) Type() NodeType         { return NodeAsterisk }
func (a Asterisk) Accept(v Visitor) error { return v.VisitAsterisk(a) }

// Default is the DEFAULT keyword inside an insert row.
type Default struct{}

func (Default) Type() NodeType         { return NodeDefault }
func (Default) Accept(v Visitor) error { return v.VisitDefault() }

// DefaultValue asks the database to fill the column with its default.
func DefaultValue() Expression { return Expression{Node: Default{}} }

// Invalid stands in for an operand that could not be converted into a node.
// Rendering it fails with a conversion error.
type Invalid struct {
	Err error
}

func (i Invalid) Type() NodeType         { return NodeInvalid }
func (i Invalid) Accept(v Visitor) error { return v.VisitInvalid(i) }
