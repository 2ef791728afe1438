package visitor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/sqlerr"
)

func buildSQLite(t *testing.T, q ast.Query) (string, []ast.Value) {
	t.Helper()
	sql, params, err := NewSQLite().Build(q)
	require.NoError(t, err)
	return sql, params
}

func TestSQLiteSelectValue(t *testing.T) {
	sql, params := buildSQLite(t, ast.NewSelect().Value(ast.Int32(1)))
	assert.Equal(t, "SELECT ?", sql)
	assert.Equal(t, []ast.Value{ast.Int32(1)}, params)
}

func TestSQLiteOffsetWithoutLimit(t *testing.T) {
	sql, params := buildSQLite(t, ast.SelectFrom("t").Offset(10))
	assert.Equal(t, "SELECT `t`.* FROM `t` LIMIT ? OFFSET ?", sql)
	assert.Equal(t, []ast.Value{ast.Int64(-1), ast.Int64(10)}, params)
}

func TestSQLiteInsertOrIgnore(t *testing.T) {
	ins := ast.SingleInsert("t").Value("a", 1).OnConflict(ast.ConflictDoNothing).Returning("a")
	sql, _ := buildSQLite(t, ins)
	assert.Equal(t, "INSERT OR IGNORE INTO `t` (`a`) VALUES (?) RETURNING `a`", sql)
}

func TestSQLiteTupleInValues(t *testing.T) {
	row := ast.NewRow(ast.Col("a"), ast.Col("b"))
	q := ast.SelectFrom("t").Where(row.NotIn(ast.NewValues(ast.NewRow(1, 2), ast.NewRow(3, 4))))
	sql, params := buildSQLite(t, q)
	assert.Equal(t, "SELECT `t`.* FROM `t` WHERE (`a`,`b`) NOT IN (VALUES (?,?), (?,?))", sql)
	assert.Len(t, params, 4)
}

func TestSQLiteUnsupported(t *testing.T) {
	doc := ast.Col("doc")
	queries := map[string]ast.Query{
		"json filter":  ast.SelectFrom("t").Where(doc.JSONArrayContains(ast.JSON(json.RawMessage(`[1]`)))),
		"json extract": ast.NewSelect().Column(ast.JSONExtract(doc, ast.JSONPathString("$.a"), false)),
		"text search":  ast.SelectFrom("t").Where(ast.TextSearch("a").Matches("x")),
		"row to json":  ast.SelectFrom("t").Column(ast.RowToJSON(ast.NewTable("t"), false)),
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			_, _, err := NewSQLite().Build(q)
			assert.ErrorIs(t, err, sqlerr.ErrUnsupported)
		})
	}
}

func TestRawUnsignedLiteral(t *testing.T) {
	sql, _ := buildSQLite(t, ast.NewSelect().Column(ast.Uint32(7).Raw()))
	assert.Equal(t, "SELECT 7", sql)

	_, _, err := NewMSSQL().Build(ast.NewSelect().Column(ast.Uint32(7).Raw()))
	assert.ErrorIs(t, err, sqlerr.ErrConversion)
}
