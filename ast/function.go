package ast

type FunctionKind int

const (
	FnRowNumber FunctionKind = iota
	FnCount
	FnAggregateToString
	FnAverage
	FnSum
	FnLower
	FnUpper
	FnMinimum
	FnMaximum
	FnCoalesce
	FnJSONExtract
	FnTextSearch
	FnRowToJSON
)

// JSONPath addresses a value inside a JSON document. Postgres takes a list of
// keys, MySQL a `$.a.b` path string.
type JSONPath struct {
	String  string
	Array   []string
	IsArray bool
}

func JSONPathString(path string) JSONPath { return JSONPath{String: path} }

func JSONPathArray(keys ...string) JSONPath { return JSONPath{Array: keys, IsArray: true} }

// Function is a SQL function call. Only the fields relevant to Kind are set.
type Function struct {
	Kind      FunctionKind
	Args      []Expression
	Partition []Column
	Ordering  []OrderDefinition
	Path      JSONPath
	AsText    bool
	Table     *Table
	Pretty    bool
}

func (f Function) Type() NodeType         { return NodeFunction }
func (f Function) Accept(v Visitor) error { return v.VisitFunction(f) }
func (f Function) Expr() Expression       { return Expression{Node: f} }

func (f Function) As(alias string) Expression { return Expression{Node: f, Alias: alias} }

func call(kind FunctionKind, args ...any) Function {
	f := Function{Kind: kind, Args: make([]Expression, 0, len(args))}
	for _, a := range args {
		if s, ok := a.(string); ok {
			f.Args = append(f.Args, Col(s).Expr())
			continue
		}
		f.Args = append(f.Args, ExprOf(a))
	}
	return f
}

// RowNumber renders ROW_NUMBER() OVER(...); configure the window with Over.
func RowNumber() Function { return Function{Kind: FnRowNumber} }

// Over sets the window partition and ordering of a RowNumber.
func (f Function) Over(partition []Column, order ...Orderable) Function {
	f.Partition = partition
	f.Ordering = make([]OrderDefinition, 0, len(order))
	for _, o := range order {
		f.Ordering = append(f.Ordering, o.Ordering())
	}
	return f
}

// Count without arguments counts rows with COUNT(*). String arguments are
// column names.
func Count(args ...any) Function         { return call(FnCount, args...) }
func AggregateToString(arg any) Function { return call(FnAggregateToString, arg) }
func Average(arg any) Function           { return call(FnAverage, arg) }
func Sum(arg any) Function               { return call(FnSum, arg) }
func Lower(arg any) Function             { return call(FnLower, arg) }
func Upper(arg any) Function             { return call(FnUpper, arg) }
func Minimum(arg any) Function           { return call(FnMinimum, arg) }
func Maximum(arg any) Function           { return call(FnMaximum, arg) }
func Coalesce(args ...any) Function      { return call(FnCoalesce, args...) }
func TextSearch(cols ...any) Function    { return call(FnTextSearch, cols...) }

// JSONExtract reads path from a JSON column. With asText the result is
// unquoted text instead of JSON.
func JSONExtract(arg any, path JSONPath, asText bool) Function {
	f := call(FnJSONExtract, arg)
	f.Path = path
	f.AsText = asText
	return f
}

// RowToJSON converts every row of t into a JSON object.
func RowToJSON(t Table, pretty bool) Function {
	t.Joins = nil
	t.Indexes = nil
	return Function{Kind: FnRowToJSON, Table: &t, Pretty: pretty}
}

func (f Function) Equals(x any) Compare        { return f.Expr().Equals(x) }
func (f Function) GreaterThan(x any) Compare   { return f.Expr().GreaterThan(x) }
func (f Function) LessThan(x any) Compare      { return f.Expr().LessThan(x) }
func (f Function) Matches(q string) Compare    { return f.Expr().Matches(q) }
func (f Function) NotMatches(q string) Compare { return f.Expr().NotMatches(q) }
