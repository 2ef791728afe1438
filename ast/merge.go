package ast

import "github.com/songww/xiayu/sqlerr"

// DualTable is the alias under which a lowered insert exposes its rows to
// the MERGE join.
const DualTable = "dual"

// Using is the source side of a MERGE.
type Using struct {
	Query      Query
	AsTable    Table
	Columns    []Column
	Conditions ConditionTree
}

// Merge only exists as the output of MergeFromInsert.
type Merge struct {
	Table            Table
	Using            Using
	WhenNotMatched   *Insert
	ReturningColumns []Column
}

func (m *Merge) Type() NodeType         { return NodeMerge }
func (m *Merge) Accept(v Visitor) error { return v.VisitMerge(m) }

// MergeFromInsert lowers an insert carrying ON CONFLICT DO NOTHING into
// `MERGE INTO t USING (<values>) AS dual (...) ON <unique match> WHEN NOT
// MATCHED THEN INSERT`. Every declared unique index contributes one clause
// to the ON tree, joined by OR. A compound index ANDs its columns.
//
// For each index column: an inserted column matches dual against the table;
// a column left out of the insert matches its static default; a database
// generated column cannot match anything, dropping a single-column index and
// turning into 1=0 inside a compound one.
func MergeFromInsert(ins *Insert) (*Merge, error) {
	if err := ins.Err(); err != nil {
		return nil, err
	}
	if ins.Table.Kind != TableNamed || ins.Table.Name == "" {
		return nil, sqlerr.Conversion("insert needs to point to a table for conversion to merge")
	}
	if len(ins.Table.Indexes) == 0 {
		return nil, sqlerr.Conversion("insert table %q needs unique index definitions for conversion to merge", ins.Table.Name)
	}
	if len(ins.Columns) == 0 {
		return nil, sqlerr.Conversion("insert into %q without columns cannot be converted to merge", ins.Table.Name)
	}

	query, err := mergeSource(ins)
	if err != nil {
		return nil, err
	}

	dual := NewTable(DualTable)
	bare := make([]Column, len(ins.Columns))
	dualRow := make(Row, len(ins.Columns))
	for i, c := range ins.Columns {
		bare[i] = c.Bare()
		dualRow[i] = dual.Col(c.Name).Expr()
	}

	on, err := mergeConditions(ins, dual)
	if err != nil {
		return nil, err
	}

	target := ins.Table
	target.Joins = nil

	return &Merge{
		Table: target,
		Using: Using{
			Query:      query,
			AsTable:    dual,
			Columns:    bare,
			Conditions: on,
		},
		WhenNotMatched: &Insert{
			Table:   target,
			Columns: bare,
			Source:  InsertSource{Kind: SourceRow, Row: dualRow},
		},
		ReturningColumns: ins.ReturningColumns,
	}, nil
}

func mergeSource(ins *Insert) (Query, error) {
	switch ins.Source.Kind {
	case SourceRow:
		return projectRow(ins.Columns, ins.Source.Row)
	case SourceValues:
		rows := ins.Source.Values.Rows
		if len(rows) == 0 {
			return nil, sqlerr.Conversion("insert into %q has no rows", ins.Table.Name)
		}
		first, err := projectRow(ins.Columns, rows[0])
		if err != nil {
			return nil, err
		}
		if len(rows) == 1 {
			return first, nil
		}
		u := NewUnion(first)
		for _, r := range rows[1:] {
			s, err := projectRow(ins.Columns, r)
			if err != nil {
				return nil, err
			}
			u.All(s)
		}
		return u, nil
	case SourceSelect:
		if ins.Source.Select == nil {
			return nil, sqlerr.Conversion("insert into %q has no source select", ins.Table.Name)
		}
		return ins.Source.Select, nil
	}
	return nil, sqlerr.Unsupported("insert source %d cannot be converted to merge", ins.Source.Kind)
}

func projectRow(cols []Column, row Row) (*Select, error) {
	if len(row) != len(cols) {
		return nil, errRowWidth(0, len(row), len(cols))
	}
	s := NewSelect()
	for i, e := range row {
		s.Columns = append(s.Columns, e.As(cols[i].Name))
	}
	return s, nil
}

func mergeConditions(ins *Insert, dual Table) (ConditionTree, error) {
	inserted := make(map[string]bool, len(ins.Columns))
	for _, c := range ins.Columns {
		inserted[c.Name] = true
	}
	target := ins.Table
	target.Indexes = nil

	var clauses []Conditional
	for _, idx := range ins.Table.Indexes {
		parts := make([]Conditional, 0, len(idx.Columns))
		skip := false
		for _, c := range idx.Columns {
			cond, ok, err := matchColumn(c, inserted, dual, target)
			if err != nil {
				return ConditionTree{}, err
			}
			if !ok {
				if !idx.Compound() {
					skip = true
					break
				}
				parts = append(parts, NegativeCondition())
				continue
			}
			parts = append(parts, cond)
		}
		if skip || len(parts) == 0 {
			continue
		}
		if len(parts) == 1 {
			clauses = append(clauses, parts[0])
			continue
		}
		clauses = append(clauses, And(parts...))
	}

	switch len(clauses) {
	case 0:
		// Nothing can collide, so every row is inserted.
		return NegativeCondition(), nil
	case 1:
		return clauses[0].Tree(), nil
	}
	return Or(clauses...), nil
}

// matchColumn reports false for database generated columns, whose value is
// unknown before the insert.
func matchColumn(c Column, inserted map[string]bool, dual, target Table) (Conditional, bool, error) {
	if inserted[c.Name] {
		return dual.Col(c.Name).Equals(target.Col(c.Name)), true, nil
	}
	if c.Default == nil {
		return nil, false, sqlerr.Conversion("unique column %q is missing from the insert and has no default", c.Name)
	}
	if c.Default.Generated {
		return nil, false, nil
	}
	return target.Col(c.Name).Equals(c.Default.Value), true, nil
}
