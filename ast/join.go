package ast

type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
)

func (k JoinKind) Keyword() string {
	switch k {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	default:
		return "INNER JOIN"
	}
}

// JoinData is a table plus its ON condition, built with Table.On.
type JoinData struct {
	Table      Table
	Conditions ConditionTree
}

type Join struct {
	Kind JoinKind
	JoinData
}
