package ast

type Visitor interface {
	VisitSelect(*Select) error
	VisitInsert(*Insert) error
	VisitUpdate(*Update) error
	VisitDelete(*Delete) error
	VisitUnion(*Union) error
	VisitMerge(*Merge) error
	VisitRawQuery(RawQuery) error

	VisitExpression(Expression) error
	VisitValue(Value) error
	VisitRaw(Raw) error
	VisitColumn(Column) error
	VisitTable(Table) error
	VisitRow(Row) error
	VisitValues(Values) error
	VisitFunction(Function) error
	VisitConditionTree(ConditionTree) error
	VisitCompare(Compare) error
	VisitOperation(Operation) error
	VisitAsterisk(Asterisk) error
	VisitDefault() error
	VisitInvalid(Invalid) error
}
