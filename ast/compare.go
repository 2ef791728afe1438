package ast

type CompareOp int

const (
	OpEquals CompareOp = iota
	OpNotEquals
	OpLessThan
	OpLessThanOrEquals
	OpGreaterThan
	OpGreaterThanOrEquals
	OpIn
	OpNotIn
	OpLike
	OpNotLike
	OpBeginsWith
	OpNotBeginsWith
	OpEndsInto
	OpNotEndsInto
	OpIsNull
	OpIsNotNull
	OpBetween
	OpNotBetween
	OpRaw
	OpJSONArrayContains
	OpJSONArrayNotContains
	OpJSONArrayBeginsWith
	OpJSONArrayNotBeginsWith
	OpJSONArrayEndsInto
	OpJSONArrayNotEndsInto
	OpJSONTypeEquals
	OpJSONTypeNotEquals
	OpMatches
	OpNotMatches
)

// Negated reports whether op is the NOT form of a comparison.
func (op CompareOp) Negated() bool {
	switch op {
	case OpNotEquals, OpNotIn, OpNotLike, OpNotBeginsWith, OpNotEndsInto, OpIsNotNull,
		OpNotBetween, OpJSONArrayNotContains, OpJSONArrayNotBeginsWith, OpJSONArrayNotEndsInto,
		OpJSONTypeNotEquals, OpNotMatches:
		return true
	}
	return false
}

func (op CompareOp) IsJSON() bool {
	return op >= OpJSONArrayContains && op <= OpJSONTypeNotEquals
}

type JSONType int

const (
	JSONTypeArray JSONType = iota
	JSONTypeObject
	JSONTypeString
	JSONTypeNumber
	JSONTypeBoolean
	JSONTypeNull
)

func (t JSONType) String() string {
	return [...]string{"array", "object", "string", "number", "boolean", "null"}[t]
}

// Compare is a binary (or unary, for IS NULL) predicate. Pattern carries the
// unwrapped LIKE pattern, Upper the upper bound of BETWEEN.
type Compare struct {
	Op       CompareOp
	Left     Expression
	Right    Expression
	Upper    Expression
	Pattern  string
	RawOp    string
	JSONType JSONType
}

func (c Compare) Type() NodeType         { return NodeCompare }
func (c Compare) Accept(v Visitor) error { return v.VisitCompare(c) }

func (c Compare) Tree() ConditionTree {
	return Single(Expression{Node: c})
}
