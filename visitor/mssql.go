package visitor

import (
	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
	"github.com/songww/xiayu/sqlerr"
)

const generatedKeys = "@generated_keys"

// MSSQL renders for SQL Server. Inserts that return columns go through a
// table variable filled by OUTPUT ... INTO and are read back with a join on
// the target table, so that values set by triggers are visible.
type MSSQL struct {
	base
}

func NewMSSQL() *MSSQL {
	v := &MSSQL{}
	v.base.dialect = dialect.MSSQL{}
	v.base.outer = v
	return v
}

// visitLimitOffset renders OFFSET ... ROWS [FETCH NEXT ... ROWS ONLY], which
// needs an ORDER BY in front of it.
func (v *MSSQL) visitLimitOffset(limit, offset *int64) error {
	switch {
	case limit != nil:
		off := int64(0)
		if offset != nil {
			off = *offset
		}
		v.orderFallback()
		v.write(" OFFSET ")
		v.parameter(ast.Int64(off))
		v.write(" ROWS FETCH NEXT ")
		v.parameter(ast.Int64(*limit))
		v.write(" ROWS ONLY")
	case offset != nil && (v.orderBySet || *offset > 0):
		v.orderFallback()
		v.write(" OFFSET ")
		v.parameter(ast.Int64(*offset))
		v.write(" ROWS")
	}
	return nil
}

func (v *MSSQL) orderFallback() {
	if !v.orderBySet {
		v.write(" ORDER BY 1")
		v.orderBySet = true
	}
}

func (v *MSSQL) VisitInsert(ins *ast.Insert) error {
	if err := ins.Err(); err != nil {
		return err
	}
	if ins.Table.Kind != ast.TableNamed {
		return sqlerr.Conversion("insert target must be a named table")
	}
	if ins.Conflict == ast.ConflictDoNothing {
		return sqlerr.Unsupported("ON CONFLICT DO NOTHING outside of MERGE")
	}

	returning := len(ins.ReturningColumns) > 0
	if returning {
		v.declareGeneratedKeys(ins.ReturningColumns)
		v.writeByte(' ')
	}
	if err := v.with(ins.CTEs); err != nil {
		return err
	}

	v.write("INSERT INTO ")
	v.tableName(ins.Table)

	if ins.IsEmpty() {
		if returning {
			v.outputInto(ins.ReturningColumns)
		}
		v.write(" DEFAULT VALUES")
	} else {
		v.writeByte(' ')
		if err := v.qualifiedColumns(ins.Columns); err != nil {
			return err
		}
		if returning {
			v.outputInto(ins.ReturningColumns)
		}
		if err := v.insertSource(ins, ","); err != nil {
			return err
		}
	}

	if returning {
		v.writeByte(' ')
		return v.selectGeneratedKeys(ins.ReturningColumns, ins.Table)
	}
	return nil
}

func (v *MSSQL) qualifiedColumns(cols []ast.Column) error {
	v.writeByte('(')
	for i, c := range cols {
		if i > 0 {
			v.writeByte(',')
		}
		if err := v.VisitColumn(c); err != nil {
			return err
		}
	}
	v.writeByte(')')
	return nil
}

func (v *MSSQL) VisitMerge(m *ast.Merge) error {
	returning := len(m.ReturningColumns) > 0
	if returning {
		v.declareGeneratedKeys(m.ReturningColumns)
		v.writeByte(' ')
	}

	v.write("MERGE INTO ")
	v.tableName(m.Table)

	v.write(" USING ")
	if err := v.surround("(", ")", func() error { return m.Using.Query.Accept(v) }); err != nil {
		return err
	}
	v.write(" AS ")
	v.quote(m.Using.AsTable.Name)
	v.write(" (")
	v.bareColumns(m.Using.Columns, ",")
	v.write(") ON ")
	if err := v.VisitConditionTree(m.Using.Conditions); err != nil {
		return err
	}

	if ins := m.WhenNotMatched; ins != nil {
		v.write(" WHEN NOT MATCHED THEN INSERT (")
		v.bareColumns(ins.Columns, ",")
		v.write(") VALUES ")
		if err := v.VisitRow(ins.Source.Row); err != nil {
			return err
		}
	}

	if !returning {
		v.writeByte(';')
		return nil
	}
	v.outputInto(m.ReturningColumns)
	v.write("; ")
	return v.selectGeneratedKeys(m.ReturningColumns, m.Table)
}

// declareGeneratedKeys writes `DECLARE @generated_keys table([c] TYPE,...)`.
func (v *MSSQL) declareGeneratedKeys(cols []ast.Column) {
	v.write("DECLARE ")
	v.write(generatedKeys)
	v.write(" table(")
	for i, c := range cols {
		if i > 0 {
			v.writeByte(',')
		}
		v.quote(c.Name)
		v.writeByte(' ')
		if c.Family != nil {
			v.write(v.dialect.TypeName(*c.Family))
		} else {
			v.write("NVARCHAR(255)")
		}
	}
	v.writeByte(')')
}

func (v *MSSQL) outputInto(cols []ast.Column) {
	inserted := ast.NewTable("Inserted")
	v.write(" OUTPUT ")
	for i, c := range cols {
		if i > 0 {
			v.writeByte(',')
		}
		v.qualifier(inserted)
		v.writeByte('.')
		v.quote(c.Name)
	}
	v.write(" INTO ")
	v.write(generatedKeys)
}

// selectGeneratedKeys reads the returned rows back from the target table.
func (v *MSSQL) selectGeneratedKeys(cols []ast.Column, target ast.Table) error {
	t := ast.NewTable("t")
	g := ast.NewTable("g")

	v.write("SELECT ")
	for i, c := range cols {
		if i > 0 {
			v.writeByte(',')
		}
		if err := v.VisitColumn(t.Col(c.Name)); err != nil {
			return err
		}
	}
	v.write(" FROM ")
	v.write(generatedKeys)
	v.write(" AS g INNER JOIN ")
	v.tableName(target)
	v.write(" AS ")
	v.quote("t")
	v.write(" ON ")

	wrap := len(cols) > 1
	if wrap {
		v.writeByte('(')
	}
	for i, c := range cols {
		if i > 0 {
			v.write(" AND ")
		}
		if err := v.binary(t.Col(c.Name).Expr(), " = ", g.Col(c.Name).Expr()); err != nil {
			return err
		}
	}
	if wrap {
		v.writeByte(')')
	}
	v.write(" WHERE @@ROWCOUNT > 0")
	return nil
}

func (v *MSSQL) visitAggregateToString(arg ast.Expression) error {
	v.write("STRING_AGG(")
	if err := v.VisitExpression(arg); err != nil {
		return err
	}
	v.write(", ',')")
	return nil
}

func (v *MSSQL) visitAverage(arg ast.Expression) error {
	v.write("AVG(CONVERT(DECIMAL(32,16),")
	if err := v.VisitExpression(arg); err != nil {
		return err
	}
	v.write("))")
	return nil
}
