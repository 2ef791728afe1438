// Package visitor renders query trees into SQL text and an ordered parameter
// list for a specific dialect.
package visitor

import (
	"errors"
	"strings"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
	"github.com/songww/xiayu/sqlerr"
)

// renderer is implemented by every dialect visitor. The unexported hooks are
// the points where dialects diverge; base supplies the common behavior and
// dispatches through outer so that overrides are honored at any depth.
type renderer interface {
	ast.Visitor
	Builder
	reset()

	visitEquals(left, right ast.Expression, not bool) error
	visitInValues(vals ast.Values) error
	visitLimitOffset(limit, offset *int64) error
	visitJSONCompare(c ast.Compare) error
	visitMatches(c ast.Compare) error
	visitAggregateToString(arg ast.Expression) error
	visitAverage(arg ast.Expression) error
	visitJSONExtract(f ast.Function) error
	visitTextSearch(f ast.Function) error
	visitRowToJSON(f ast.Function) error
	visitValuesTable(vals ast.Values) error
}

type base struct {
	outer   renderer
	dialect dialect.Dialect

	sb     strings.Builder
	params []ast.Value

	// orderBySet records whether the current select emitted ORDER BY.
	orderBySet bool
	// depth is the nesting level of condition trees within one clause.
	depth int
}

func (v *base) reset() {
	v.sb.Reset()
	v.params = v.params[:0]
	v.orderBySet = false
	v.depth = 0
}

// Build renders q. Compatibility rewrites for the dialect run first; the
// input tree is never modified.
func (v *base) Build(q ast.Query) (sql string, params []ast.Value, err error) {
	v.reset()
	defer func() {
		if r := recover(); r != nil {
			sql, params = "", nil
			err = v.tag(sqlerr.Unsupported("rendering aborted: %v", r))
		}
	}()

	if q == nil {
		return "", nil, v.tag(sqlerr.Conversion("nil query"))
	}
	q, err = v.compatibility(q)
	if err != nil {
		return "", nil, v.tag(err)
	}
	if err := q.Accept(v.outer); err != nil {
		return "", nil, v.tag(err)
	}

	params = make([]ast.Value, len(v.params))
	copy(params, v.params)
	return v.sb.String(), params, nil
}

func (v *base) compatibility(q ast.Query) (ast.Query, error) {
	if ins, ok := q.(*ast.Insert); ok && ins.Conflict == ast.ConflictDoNothing &&
		!v.dialect.Has(dialect.OnConflictDoNothing) &&
		!v.dialect.Has(dialect.InsertIgnore) &&
		!v.dialect.Has(dialect.InsertOrIgnore) {
		if !v.dialect.Has(dialect.Merge) {
			return nil, sqlerr.Unsupported("ON CONFLICT DO NOTHING")
		}
		m, err := ast.MergeFromInsert(ins)
		if err != nil {
			return nil, err
		}
		q = m
	}
	if !v.dialect.Has(dialect.TupleComparison) {
		return ast.HoistTupleSelects(q)
	}
	return q, nil
}

func (v *base) tag(err error) error {
	var e *sqlerr.Error
	if errors.As(err, &e) {
		if e.Dialect == "" {
			return e.WithDialect(v.dialect.Name())
		}
		return e
	}
	return &sqlerr.Error{Kind: sqlerr.KindConversion, Dialect: v.dialect.Name(), Err: err}
}

func (v *base) write(s string)   { v.sb.WriteString(s) }
func (v *base) writeByte(c byte) { v.sb.WriteByte(c) }

func (v *base) quote(name string) { v.write(v.dialect.QuoteIdentifier(name)) }

// parameter appends val and writes the placeholder for its position.
func (v *base) parameter(val ast.Value) {
	v.params = append(v.params, val)
	v.write(v.dialect.Placeholder(len(v.params)))
}

func (v *base) surround(open, close string, fn func() error) error {
	v.write(open)
	if err := fn(); err != nil {
		return err
	}
	v.write(close)
	return nil
}

func (v *base) expressions(exprs []ast.Expression, sep string) error {
	for i, e := range exprs {
		if i > 0 {
			v.write(sep)
		}
		if err := v.outer.VisitExpression(e); err != nil {
			return err
		}
	}
	return nil
}

func (v *base) bareColumns(cols []ast.Column, sep string) {
	for i, c := range cols {
		if i > 0 {
			v.write(sep)
		}
		v.quote(c.Name)
	}
}

// qualifier writes how columns refer to t: its alias, or its possibly
// database-qualified name.
func (v *base) qualifier(t ast.Table) {
	if t.Alias != "" {
		v.quote(t.Alias)
		return
	}
	v.tableName(t)
}

func (v *base) tableName(t ast.Table) {
	if t.Database != "" {
		v.quote(t.Database)
		v.writeByte('.')
	}
	v.quote(t.Name)
}

func (v *base) VisitSelect(s *ast.Select) error {
	if err := s.Err(); err != nil {
		return err
	}
	savedOrder, savedDepth := v.orderBySet, v.depth
	v.orderBySet, v.depth = false, 0
	defer func() { v.orderBySet, v.depth = savedOrder, savedDepth }()

	if err := v.with(s.CTEs); err != nil {
		return err
	}

	v.write("SELECT ")
	if s.IsDistinct {
		v.write("DISTINCT ")
	}

	switch {
	case len(s.Columns) > 0:
		if err := v.expressions(s.Columns, ", "); err != nil {
			return err
		}
	case len(s.Tables) > 0:
		for i, t := range s.Tables {
			if i > 0 {
				v.write(", ")
			}
			if err := v.outer.VisitAsterisk(ast.Asterisk{Table: &t}); err != nil {
				return err
			}
		}
	default:
		v.writeByte('*')
	}

	if len(s.Tables) > 0 {
		v.write(" FROM ")
		for i, t := range s.Tables {
			if i > 0 {
				v.write(", ")
			}
			if err := v.outer.VisitTable(t); err != nil {
				return err
			}
		}
	}

	for _, j := range s.Joins {
		if err := v.join(j); err != nil {
			return err
		}
	}

	if !s.Conditions.IsEmpty() {
		v.write(" WHERE ")
		if err := v.outer.VisitConditionTree(s.Conditions); err != nil {
			return err
		}
	}

	if len(s.Grouping) > 0 {
		v.write(" GROUP BY ")
		if err := v.expressions(s.Grouping, ", "); err != nil {
			return err
		}
	}

	if !s.HavingConditions.IsEmpty() {
		v.write(" HAVING ")
		if err := v.outer.VisitConditionTree(s.HavingConditions); err != nil {
			return err
		}
	}

	if len(s.Ordering) > 0 {
		v.write(" ORDER BY ")
		if err := v.ordering(s.Ordering); err != nil {
			return err
		}
		v.orderBySet = true
	}

	if s.LimitRows != nil || s.OffsetRows != nil {
		return v.outer.visitLimitOffset(s.LimitRows, s.OffsetRows)
	}
	return nil
}

// with writes `WITH a AS (...), b AS (...) ` when ctes is not empty.
func (v *base) with(ctes []ast.CommonTableExpression) error {
	if len(ctes) == 0 {
		return nil
	}
	v.write("WITH ")
	for i, cte := range ctes {
		if i > 0 {
			v.write(", ")
		}
		if err := v.cte(cte); err != nil {
			return err
		}
	}
	v.writeByte(' ')
	return nil
}

func (v *base) cte(cte ast.CommonTableExpression) error {
	v.quote(cte.Name)
	if len(cte.Columns) > 0 {
		v.write(" (")
		for i, c := range cte.Columns {
			if i > 0 {
				v.write(", ")
			}
			v.quote(c)
		}
		v.writeByte(')')
	}
	v.write(" AS ")
	return v.surround("(", ")", func() error { return cte.Query.Accept(v.outer) })
}

func (v *base) ordering(defs []ast.OrderDefinition) error {
	for i, o := range defs {
		if i > 0 {
			v.write(", ")
		}
		if err := v.outer.VisitExpression(o.Expr); err != nil {
			return err
		}
		switch o.Order {
		case ast.OrderAsc:
			v.write(" ASC")
		case ast.OrderDesc:
			v.write(" DESC")
		}
	}
	return nil
}

func (v *base) join(j ast.Join) error {
	v.writeByte(' ')
	v.write(j.Kind.Keyword())
	v.writeByte(' ')
	if err := v.outer.VisitTable(j.Table); err != nil {
		return err
	}
	v.write(" ON ")
	return v.outer.VisitConditionTree(j.Conditions)
}

// visitLimitOffset renders `LIMIT n OFFSET m`, or a bare OFFSET.
func (v *base) visitLimitOffset(limit, offset *int64) error {
	if limit != nil {
		v.write(" LIMIT ")
		v.parameter(ast.Int64(*limit))
	}
	if offset != nil {
		v.write(" OFFSET ")
		v.parameter(ast.Int64(*offset))
	}
	return nil
}

func (v *base) VisitTable(t ast.Table) error {
	switch t.Kind {
	case ast.TableNamed:
		v.tableName(t)
	case ast.TableQuery:
		if t.Query == nil {
			return sqlerr.Conversion("derived table without a query")
		}
		if err := v.surround("(", ")", func() error { return v.outer.VisitSelect(t.Query) }); err != nil {
			return err
		}
	case ast.TableValues:
		if err := v.outer.visitValuesTable(t.Values); err != nil {
			return err
		}
	}
	if t.Alias != "" {
		v.write(" AS ")
		v.quote(t.Alias)
	}
	for _, j := range t.Joins {
		if err := v.join(j); err != nil {
			return err
		}
	}
	return nil
}

func (v *base) visitValuesTable(vals ast.Values) error {
	return v.outer.VisitValues(vals)
}

// VisitValues renders `(VALUES (..), (..))`.
func (v *base) VisitValues(vals ast.Values) error {
	if err := vals.Err(); err != nil {
		return err
	}
	if len(vals.Rows) == 0 {
		return sqlerr.Conversion("empty values list")
	}
	v.write("(VALUES ")
	for i, r := range vals.Rows {
		if i > 0 {
			v.write(", ")
		}
		if err := v.outer.VisitRow(r); err != nil {
			return err
		}
	}
	v.writeByte(')')
	return nil
}

func (v *base) VisitInsert(ins *ast.Insert) error {
	if err := ins.Err(); err != nil {
		return err
	}
	if ins.Table.Kind != ast.TableNamed {
		return sqlerr.Conversion("insert target must be a named table")
	}
	if err := v.with(ins.CTEs); err != nil {
		return err
	}

	v.write("INSERT ")
	if ins.Conflict == ast.ConflictDoNothing {
		switch {
		case v.dialect.Has(dialect.InsertOrIgnore):
			v.write("OR IGNORE ")
		case v.dialect.Has(dialect.InsertIgnore):
			v.write("IGNORE ")
		case v.dialect.Has(dialect.OnConflictDoNothing):
		default:
			return sqlerr.Unsupported("ON CONFLICT DO NOTHING")
		}
	}
	v.write("INTO ")
	v.tableName(ins.Table)

	if ins.IsEmpty() {
		v.write(" DEFAULT VALUES")
	} else {
		v.write(" (")
		v.bareColumns(ins.Columns, ", ")
		v.writeByte(')')
		if err := v.insertSource(ins, ", "); err != nil {
			return err
		}
	}

	if ins.Conflict == ast.ConflictDoNothing && v.dialect.Has(dialect.OnConflictDoNothing) {
		v.write(" ON CONFLICT DO NOTHING")
	}

	if len(ins.ReturningColumns) > 0 {
		if !v.dialect.Has(dialect.Returning) {
			return sqlerr.Unsupported("RETURNING")
		}
		v.write(" RETURNING ")
		v.bareColumns(ins.ReturningColumns, ", ")
	}
	return nil
}

func (v *base) insertSource(ins *ast.Insert, rowSep string) error {
	switch ins.Source.Kind {
	case ast.SourceRow:
		if len(ins.Source.Row) != len(ins.Columns) {
			return sqlerr.Conversion("insert has %d columns but %d values", len(ins.Columns), len(ins.Source.Row))
		}
		v.write(" VALUES ")
		return v.outer.VisitRow(ins.Source.Row)
	case ast.SourceValues:
		if err := ins.Source.Values.Err(); err != nil {
			return err
		}
		if len(ins.Source.Values.Rows) == 0 {
			return sqlerr.Conversion("insert without rows")
		}
		v.write(" VALUES ")
		for i, r := range ins.Source.Values.Rows {
			if i > 0 {
				v.write(rowSep)
			}
			if err := v.outer.VisitRow(r); err != nil {
				return err
			}
		}
		return nil
	case ast.SourceSelect:
		if ins.Source.Select == nil {
			return sqlerr.Conversion("insert without a source select")
		}
		v.writeByte(' ')
		return v.outer.VisitSelect(ins.Source.Select)
	}
	return sqlerr.Conversion("unknown insert source %d", ins.Source.Kind)
}

func (v *base) VisitUpdate(u *ast.Update) error {
	if err := u.Err(); err != nil {
		return err
	}
	if len(u.Assignments) == 0 {
		return sqlerr.Conversion("update without assignments")
	}
	if err := v.with(u.CTEs); err != nil {
		return err
	}
	v.write("UPDATE ")
	v.tableName(u.Table)
	v.write(" SET ")
	for i, a := range u.Assignments {
		if i > 0 {
			v.write(", ")
		}
		v.quote(a.Column.Name)
		v.write(" = ")
		if err := v.outer.VisitExpression(a.Value); err != nil {
			return err
		}
	}
	if !u.Conditions.IsEmpty() {
		v.write(" WHERE ")
		return v.outer.VisitConditionTree(u.Conditions)
	}
	return nil
}

func (v *base) VisitDelete(d *ast.Delete) error {
	if err := d.Err(); err != nil {
		return err
	}
	if err := v.with(d.CTEs); err != nil {
		return err
	}
	v.write("DELETE FROM ")
	v.tableName(d.Table)
	if !d.Conditions.IsEmpty() {
		v.write(" WHERE ")
		return v.outer.VisitConditionTree(d.Conditions)
	}
	return nil
}

func (v *base) VisitUnion(u *ast.Union) error {
	if len(u.Selects) == 0 {
		return sqlerr.Conversion("empty union")
	}
	if len(u.Types) != len(u.Selects)-1 {
		return sqlerr.Conversion("union of %d selects has %d set operators", len(u.Selects), len(u.Types))
	}
	if err := v.with(u.CTEs); err != nil {
		return err
	}
	for i, s := range u.Selects {
		if i > 0 {
			if u.Types[i-1] == ast.UnionAll {
				v.write(" UNION ALL ")
			} else {
				v.write(" UNION ")
			}
		}
		if err := v.surround("(", ")", func() error { return v.outer.VisitSelect(s) }); err != nil {
			return err
		}
	}
	return nil
}

func (v *base) VisitMerge(*ast.Merge) error {
	return sqlerr.Unsupported("MERGE")
}

func (v *base) VisitRawQuery(r ast.RawQuery) error {
	v.write(r.SQL)
	v.params = append(v.params, r.Params...)
	return nil
}

func (v *base) VisitExpression(e ast.Expression) error {
	if e.Node == nil {
		return sqlerr.Conversion("empty expression")
	}
	var err error
	switch n := e.Node.(type) {
	case *ast.Select:
		err = v.surround("(", ")", func() error { return v.outer.VisitSelect(n) })
	case *ast.Union:
		err = v.surround("(", ")", func() error { return v.outer.VisitUnion(n) })
	default:
		err = n.Accept(v.outer)
	}
	if err != nil {
		return err
	}
	if e.Alias != "" {
		v.write(" AS ")
		v.quote(e.Alias)
	}
	return nil
}

func (v *base) VisitValue(val ast.Value) error {
	v.parameter(val)
	return nil
}

func (v *base) VisitRaw(r ast.Raw) error {
	s, err := v.dialect.RenderValue(r.Value)
	if err != nil {
		return err
	}
	v.write(s)
	return nil
}

func (v *base) VisitColumn(c ast.Column) error {
	if c.Table != nil {
		v.qualifier(*c.Table)
		v.writeByte('.')
	}
	v.quote(c.Name)
	if c.Alias != "" {
		v.write(" AS ")
		v.quote(c.Alias)
	}
	return nil
}

func (v *base) VisitRow(r ast.Row) error {
	return v.surround("(", ")", func() error { return v.expressions(r, ",") })
}

func (v *base) VisitAsterisk(a ast.Asterisk) error {
	if a.Table != nil {
		v.qualifier(*a.Table)
		v.writeByte('.')
	}
	v.writeByte('*')
	return nil
}

func (v *base) VisitDefault() error {
	v.write("DEFAULT")
	return nil
}

func (v *base) VisitInvalid(i ast.Invalid) error {
	return &sqlerr.Error{Kind: sqlerr.KindConversion, Err: i.Err}
}

func (v *base) VisitOperation(o ast.Operation) error {
	v.writeByte('(')
	if err := v.outer.VisitExpression(o.Left); err != nil {
		return err
	}
	v.write(" " + o.Op.String() + " ")
	if err := v.outer.VisitExpression(o.Right); err != nil {
		return err
	}
	v.writeByte(')')
	return nil
}

// VisitConditionTree wraps nested And/Or in parentheses. The outermost tree
// of a clause is written bare.
func (v *base) VisitConditionTree(t ast.ConditionTree) error {
	v.depth++
	defer func() { v.depth-- }()
	nested := v.depth > 1

	if (t.Kind == ast.TreeSingle || t.Kind == ast.TreeNot) && len(t.Exprs) != 1 {
		return sqlerr.Conversion("condition tree of kind %d holds %d expressions, expected 1", t.Kind, len(t.Exprs))
	}

	switch t.Kind {
	case ast.TreeNoCondition:
		v.write("1=1")
	case ast.TreeNegative:
		v.write("1=0")
	case ast.TreeSingle:
		return v.outer.VisitExpression(t.Exprs[0])
	case ast.TreeNot:
		if nested {
			v.writeByte('(')
		}
		v.write("NOT ")
		if err := v.outer.VisitExpression(t.Exprs[0]); err != nil {
			return err
		}
		if nested {
			v.writeByte(')')
		}
	case ast.TreeAnd, ast.TreeOr:
		if len(t.Exprs) == 0 {
			if t.Kind == ast.TreeAnd {
				v.write("1=1")
			} else {
				v.write("1=0")
			}
			return nil
		}
		sep := " AND "
		if t.Kind == ast.TreeOr {
			sep = " OR "
		}
		wrap := nested && len(t.Exprs) > 1
		if wrap {
			v.writeByte('(')
		}
		if err := v.expressions(t.Exprs, sep); err != nil {
			return err
		}
		if wrap {
			v.writeByte(')')
		}
	default:
		return sqlerr.Conversion("unknown condition tree kind %d", t.Kind)
	}
	return nil
}

func (v *base) VisitCompare(c ast.Compare) error {
	switch c.Op {
	case ast.OpEquals, ast.OpNotEquals:
		return v.outer.visitEquals(c.Left, c.Right, c.Op == ast.OpNotEquals)
	case ast.OpLessThan:
		return v.binary(c.Left, " < ", c.Right)
	case ast.OpLessThanOrEquals:
		return v.binary(c.Left, " <= ", c.Right)
	case ast.OpGreaterThan:
		return v.binary(c.Left, " > ", c.Right)
	case ast.OpGreaterThanOrEquals:
		return v.binary(c.Left, " >= ", c.Right)
	case ast.OpIn, ast.OpNotIn:
		return v.in(c.Left, c.Right, c.Op == ast.OpNotIn)
	case ast.OpLike, ast.OpNotLike, ast.OpBeginsWith, ast.OpNotBeginsWith, ast.OpEndsInto, ast.OpNotEndsInto:
		return v.like(c)
	case ast.OpIsNull:
		return v.suffix(c.Left, " IS NULL")
	case ast.OpIsNotNull:
		return v.suffix(c.Left, " IS NOT NULL")
	case ast.OpBetween, ast.OpNotBetween:
		op := " BETWEEN "
		if c.Op == ast.OpNotBetween {
			op = " NOT BETWEEN "
		}
		if err := v.binary(c.Left, op, c.Right); err != nil {
			return err
		}
		v.write(" AND ")
		return v.outer.VisitExpression(c.Upper)
	case ast.OpRaw:
		return v.binary(c.Left, " "+c.RawOp+" ", c.Right)
	case ast.OpMatches, ast.OpNotMatches:
		return v.outer.visitMatches(c)
	}
	if c.Op.IsJSON() {
		return v.outer.visitJSONCompare(c)
	}
	return sqlerr.Unsupported("comparison operator %d", c.Op)
}

func (v *base) binary(left ast.Expression, op string, right ast.Expression) error {
	if err := v.outer.VisitExpression(left); err != nil {
		return err
	}
	v.write(op)
	return v.outer.VisitExpression(right)
}

func (v *base) suffix(left ast.Expression, s string) error {
	if err := v.outer.VisitExpression(left); err != nil {
		return err
	}
	v.write(s)
	return nil
}

// visitEquals compares rows element-wise on dialects without tuple
// comparison.
func (v *base) visitEquals(left, right ast.Expression, not bool) error {
	lrow, lok := left.Node.(ast.Row)
	rrow, rok := right.Node.(ast.Row)
	if lok && rok && !v.dialect.Has(dialect.TupleComparison) {
		if len(lrow) != len(rrow) {
			return sqlerr.Conversion("cannot compare rows of %d and %d values", len(lrow), len(rrow))
		}
		if not {
			v.write("NOT ")
		}
		v.writeByte('(')
		if err := v.rowEquals(lrow, rrow); err != nil {
			return err
		}
		v.writeByte(')')
		return nil
	}
	op := " = "
	if not {
		op = " <> "
	}
	return v.binary(left, op, right)
}

// rowEquals writes `(a = x AND b = y)`.
func (v *base) rowEquals(left, right ast.Row) error {
	v.writeByte('(')
	for i := range left {
		if i > 0 {
			v.write(" AND ")
		}
		if err := v.binary(left[i], " = ", right[i]); err != nil {
			return err
		}
	}
	v.writeByte(')')
	return nil
}

func (v *base) in(left, right ast.Expression, not bool) error {
	op := " IN "
	if not {
		op = " NOT IN "
	}
	empty := func() error {
		if not {
			v.write("1=1")
		} else {
			v.write("1=0")
		}
		return nil
	}

	lrow, isRow := left.Node.(ast.Row)
	switch r := right.Node.(type) {
	case ast.Values:
		if err := r.Err(); err != nil {
			return err
		}
		if len(r.Rows) == 0 {
			return empty()
		}
		if !isRow || len(lrow) == 1 {
			// A single column against one-value rows is a plain list.
			if isRow {
				left = lrow[0]
			}
			list := make(ast.Row, len(r.Rows))
			for i, row := range r.Rows {
				if len(row) != 1 {
					return sqlerr.Conversion("single column compared with a row of %d values", len(row))
				}
				list[i] = row[0]
			}
			return v.binaryRow(left, op, list)
		}
		for _, row := range r.Rows {
			if len(row) != len(lrow) {
				return sqlerr.Conversion("tuple of %d values compared with a row of %d values", len(lrow), len(row))
			}
		}
		if !v.dialect.Has(dialect.TupleComparison) {
			return v.tupleIn(lrow, r, not)
		}
		if err := v.outer.VisitExpression(left); err != nil {
			return err
		}
		v.write(op)
		return v.outer.visitInValues(r)
	case ast.Row:
		if len(r) == 0 {
			return empty()
		}
		return v.binaryRow(left, op, r)
	case *ast.Select:
		if isRow && len(lrow) > 1 && !v.dialect.Has(dialect.TupleComparison) {
			return sqlerr.Unsupported("tuple comparison against a sub-select")
		}
	}
	return v.binary(left, op, right)
}

func (v *base) binaryRow(left ast.Expression, op string, list ast.Row) error {
	if err := v.outer.VisitExpression(left); err != nil {
		return err
	}
	v.write(op)
	return v.outer.VisitRow(list)
}

// visitInValues renders the right side of `(a, b) IN ((..), (..))`.
func (v *base) visitInValues(vals ast.Values) error {
	v.writeByte('(')
	for i, r := range vals.Rows {
		if i > 0 {
			v.write(", ")
		}
		if err := v.outer.VisitRow(r); err != nil {
			return err
		}
	}
	v.writeByte(')')
	return nil
}

// tupleIn expands `(a, b) IN (VALUES ...)` into an OR of ANDs.
func (v *base) tupleIn(left ast.Row, vals ast.Values, not bool) error {
	if not {
		v.write("NOT ")
	}
	v.writeByte('(')
	for i, row := range vals.Rows {
		if i > 0 {
			v.write(" OR ")
		}
		if err := v.rowEquals(left, row); err != nil {
			return err
		}
	}
	v.writeByte(')')
	return nil
}

func (v *base) like(c ast.Compare) error {
	w := v.dialect.Wildcard()
	var pattern, op string
	switch c.Op {
	case ast.OpLike, ast.OpNotLike:
		pattern = w + c.Pattern + w
	case ast.OpBeginsWith, ast.OpNotBeginsWith:
		pattern = c.Pattern + w
	default:
		pattern = w + c.Pattern
	}
	op = " LIKE "
	if c.Op.Negated() {
		op = " NOT LIKE "
	}
	if err := v.outer.VisitExpression(c.Left); err != nil {
		return err
	}
	v.write(op)
	v.parameter(ast.Text(pattern))
	return nil
}

func (v *base) visitJSONCompare(ast.Compare) error {
	return sqlerr.Unsupported("JSON filtering")
}

func (v *base) visitMatches(ast.Compare) error {
	return sqlerr.Unsupported("full-text search")
}

func (v *base) VisitFunction(f ast.Function) error {
	switch f.Kind {
	case ast.FnRowNumber:
		v.write("ROW_NUMBER() OVER(")
		if len(f.Partition) > 0 {
			v.write("PARTITION BY ")
			for i, c := range f.Partition {
				if i > 0 {
					v.write(", ")
				}
				if err := v.outer.VisitColumn(c); err != nil {
					return err
				}
			}
		}
		if len(f.Ordering) > 0 {
			if len(f.Partition) > 0 {
				v.writeByte(' ')
			}
			v.write("ORDER BY ")
			if err := v.ordering(f.Ordering); err != nil {
				return err
			}
		}
		v.writeByte(')')
		return nil
	case ast.FnCount:
		if len(f.Args) == 0 {
			v.write("COUNT(*)")
			return nil
		}
		return v.call("COUNT", f.Args)
	case ast.FnAggregateToString:
		if err := v.arity(f, 1); err != nil {
			return err
		}
		return v.outer.visitAggregateToString(f.Args[0])
	case ast.FnAverage:
		if err := v.arity(f, 1); err != nil {
			return err
		}
		return v.outer.visitAverage(f.Args[0])
	case ast.FnSum:
		return v.call("SUM", f.Args)
	case ast.FnLower:
		return v.call("LOWER", f.Args)
	case ast.FnUpper:
		return v.call("UPPER", f.Args)
	case ast.FnMinimum:
		return v.call("MIN", f.Args)
	case ast.FnMaximum:
		return v.call("MAX", f.Args)
	case ast.FnCoalesce:
		return v.call("COALESCE", f.Args)
	case ast.FnJSONExtract:
		if err := v.arity(f, 1); err != nil {
			return err
		}
		return v.outer.visitJSONExtract(f)
	case ast.FnTextSearch:
		return v.outer.visitTextSearch(f)
	case ast.FnRowToJSON:
		return v.outer.visitRowToJSON(f)
	}
	return sqlerr.Unsupported("function %d", f.Kind)
}

func (v *base) arity(f ast.Function, n int) error {
	if len(f.Args) != n {
		return sqlerr.Conversion("function %d takes %d arguments, got %d", f.Kind, n, len(f.Args))
	}
	return nil
}

func (v *base) call(name string, args []ast.Expression) error {
	v.write(name)
	return v.surround("(", ")", func() error { return v.expressions(args, ", ") })
}

// visitAggregateToString uses GROUP_CONCAT, shared by MySQL and SQLite.
func (v *base) visitAggregateToString(arg ast.Expression) error {
	return v.call("GROUP_CONCAT", []ast.Expression{arg})
}

func (v *base) visitAverage(arg ast.Expression) error {
	return v.call("AVG", []ast.Expression{arg})
}

func (v *base) visitJSONExtract(ast.Function) error {
	return sqlerr.Unsupported("JSON extraction")
}

func (v *base) visitTextSearch(ast.Function) error {
	return sqlerr.Unsupported("full-text search")
}

func (v *base) visitRowToJSON(ast.Function) error {
	return sqlerr.Unsupported("ROW_TO_JSON")
}
