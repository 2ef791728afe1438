package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songww/xiayu/sqlerr"
)

func usersTable() (Table, Column) {
	users := NewTable("users")
	id := users.Col("id").WithGeneratedDefault()
	return users, id
}

// matchedColumn returns the column a dual-to-target clause compares.
func matchedColumn(t *testing.T, e Expression) string {
	t.Helper()
	c, ok := e.Tree().Exprs[0].Node.(Compare)
	require.True(t, ok, "%#v", e.Node)
	left, ok := c.Left.Node.(Column)
	require.True(t, ok)
	require.NotNil(t, left.Table)
	return left.Table.Name + "." + left.Name
}

func TestMergeFromInsertCompoundGeneratedColumn(t *testing.T) {
	users, id := usersTable()
	users = users.AddUniqueIndex(id, "name")

	m, err := MergeFromInsert(SingleInsert(users).Value("name", "n"))
	require.NoError(t, err)

	on := m.Using.Conditions
	require.Equal(t, TreeAnd, on.Kind)
	require.Len(t, on.Exprs, 2)
	assert.Equal(t, NegativeCondition(), on.Exprs[0].Tree())
	assert.Equal(t, "dual.name", matchedColumn(t, on.Exprs[1]))
}

func TestMergeFromInsertIndexes(t *testing.T) {
	tests := []struct {
		name    string
		indexes func(users Table, id Column) Table
		check   func(t *testing.T, on ConditionTree)
	}{
		{
			name: "generated single column index is dropped",
			indexes: func(users Table, id Column) Table {
				return users.AddUniqueIndex(id)
			},
			check: func(t *testing.T, on ConditionTree) {
				assert.Equal(t, NegativeCondition(), on)
			},
		},
		{
			name: "generated index dropped next to an inserted one",
			indexes: func(users Table, id Column) Table {
				return users.AddUniqueIndex(id).AddUniqueIndex("name")
			},
			check: func(t *testing.T, on ConditionTree) {
				require.Equal(t, TreeSingle, on.Kind)
				assert.Equal(t, "dual.name", matchedColumn(t, Expression{Node: on}))
			},
		},
		{
			name: "indexes are ORed in declaration order",
			indexes: func(users Table, id Column) Table {
				return users.AddUniqueIndex("name").AddUniqueIndex(id, "name")
			},
			check: func(t *testing.T, on ConditionTree) {
				require.Equal(t, TreeOr, on.Kind)
				require.Len(t, on.Exprs, 2)
				assert.Equal(t, "dual.name", matchedColumn(t, on.Exprs[0]))
				compound := on.Exprs[1].Tree()
				require.Equal(t, TreeAnd, compound.Kind)
				assert.Equal(t, NegativeCondition(), compound.Exprs[0].Tree())
			},
		},
		{
			name: "static default matches the target",
			indexes: func(users Table, _ Column) Table {
				return users.AddUniqueIndex(users.Col("status").WithDefault("new"), "name")
			},
			check: func(t *testing.T, on ConditionTree) {
				require.Equal(t, TreeAnd, on.Kind)
				assert.Equal(t, "users.status", matchedColumn(t, on.Exprs[0]))
				c := on.Exprs[0].Tree().Exprs[0].Node.(Compare)
				assert.Equal(t, Text("new"), c.Right.Node)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, id := usersTable()
			m, err := MergeFromInsert(SingleInsert(tt.indexes(users, id)).Value("name", "n"))
			require.NoError(t, err)
			tt.check(t, m.Using.Conditions)
		})
	}
}

func TestMergeFromInsertValues(t *testing.T) {
	users := NewTable("users").AddUniqueIndex("name")
	ins := MultiInsert(users, "name", "age").Values("a", 1).Values("b", 2)

	m, err := MergeFromInsert(ins)
	require.NoError(t, err)

	u, ok := m.Using.Query.(*Union)
	require.True(t, ok)
	require.Len(t, u.Selects, 2)
	assert.Equal(t, []UnionType{UnionAll}, u.Types)
	assert.Equal(t, "name", u.Selects[1].Columns[0].Alias)
	assert.Equal(t, "age", u.Selects[1].Columns[1].Alias)

	assert.Equal(t, DualTable, m.Using.AsTable.Name)
	require.NotNil(t, m.WhenNotMatched)
	assert.Len(t, m.WhenNotMatched.Source.Row, 2)
	for _, c := range m.Using.Columns {
		assert.Nil(t, c.Table)
	}
}

func TestMergeFromInsertErrors(t *testing.T) {
	users := NewTable("users")
	tests := map[string]*Insert{
		"no indexes":       SingleInsert(users).Value("name", "n"),
		"missing column":   SingleInsert(users.AddUniqueIndex("email")).Value("name", "n"),
		"no columns":       SingleInsert(users.AddUniqueIndex("name")),
		"derived table":    SingleInsert(SelectFrom("t")).Value("name", "n"),
		"builder mismatch": MultiInsert(users.AddUniqueIndex("name"), "name").Values("a", "b"),
	}
	for name, ins := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := MergeFromInsert(ins)
			require.Error(t, err)
			assert.ErrorIs(t, err, sqlerr.ErrConversion)
		})
	}
}
