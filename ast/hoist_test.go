package ast

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songww/xiayu/sqlerr"
)

// =========================================================================
// Helpers
// =========================================================================

func tupleIn(sub *Select) Compare {
	return NewRow(Col("x"), Col("y")).In(sub)
}

func cteNames(ctes []CommonTableExpression) []string {
	names := make([]string, len(ctes))
	for i, c := range ctes {
		names[i] = c.Name
	}
	return names
}

func comparesIn(t ConditionTree) []Compare {
	var out []Compare
	for _, e := range t.Exprs {
		switch n := e.Node.(type) {
		case Compare:
			out = append(out, n)
		case ConditionTree:
			out = append(out, comparesIn(n)...)
		}
	}
	return out
}

// cteRefs lists the CTEs the conditions of s read from, without descending
// into their bodies.
func cteRefs(s *Select) []string {
	var refs []string
	for _, c := range comparesIn(s.Conditions) {
		sub, ok := c.Right.Node.(*Select)
		if !ok || len(sub.Tables) == 0 {
			continue
		}
		if name := sub.Tables[0].Name; strings.HasPrefix(name, "cte_") {
			refs = append(refs, name)
		}
	}
	return refs
}

// preorder walks s and, at each reference, the referenced body.
func preorder(s *Select, bodies map[string]*Select, out *[]string) {
	for _, name := range cteRefs(s) {
		*out = append(*out, name)
		preorder(bodies[name], bodies, out)
	}
}

// randomTupleTree nests tuple IN sub-select comparisons up to depth levels,
// counting them in n.
func randomTupleTree(r *rand.Rand, depth int, n *int) ConditionTree {
	k := 1 + r.Intn(3)
	conds := make([]Conditional, 0, k)
	for i := 0; i < k; i++ {
		if depth == 0 || r.Intn(3) == 0 {
			conds = append(conds, Col("plain").Equals(i))
			continue
		}
		*n++
		sub := SelectFrom("s").Column("a", "b")
		if r.Intn(2) == 0 {
			sub.Where(randomTupleTree(r, depth-1, n))
		}
		conds = append(conds, tupleIn(sub))
	}
	if r.Intn(2) == 0 {
		return And(conds...)
	}
	return Or(conds...)
}

// =========================================================================
// Numbering Tests
// =========================================================================

func TestHoistNumbersInPreOrder(t *testing.T) {
	deep := SelectFrom("w").Column("e", "f")
	mid := SelectFrom("u").Column("a", "b").Where(NewRow(Col("c"), Col("d")).In(deep))
	last := SelectFrom("z").Column("g", "h")
	q := SelectFrom("t").Where(And(tupleIn(mid), NewRow(Col("p"), Col("q")).In(last)))

	out, err := HoistTupleSelects(q)
	require.NoError(t, err)
	s := out.(*Select)

	// A CTE is listed after the ones its body refers to.
	assert.Equal(t, []string{"cte_1", "cte_0", "cte_2"}, cteNames(s.CTEs))
	assert.Equal(t, []string{"cte_0", "cte_2"}, cteRefs(s))

	bodies := map[string]*Select{}
	for _, c := range s.CTEs {
		bodies[c.Name] = c.Query.(*Select)
	}
	assert.Equal(t, "w", bodies["cte_1"].Tables[0].Name)
	assert.Equal(t, "u", bodies["cte_0"].Tables[0].Name)
	assert.Equal(t, "z", bodies["cte_2"].Tables[0].Name)
	assert.Equal(t, []string{"cte_1"}, cteRefs(bodies["cte_0"]))

	first := comparesIn(s.Conditions)[0]
	assert.Equal(t, OpIn, first.Op)
	assert.Equal(t, Col("x").Expr(), first.Left)
	inner := first.Right.Node.(*Select)
	require.Len(t, inner.Columns, 1)
	assert.Equal(t, Col("a").Expr(), inner.Columns[0])
	match := comparesIn(inner.Conditions)
	require.Len(t, match, 1)
	assert.Equal(t, Col("b").Expr(), match[0].Left)
	assert.Equal(t, Col("y").Expr(), match[0].Right)
}

func TestHoistNumberingProperties(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 300; i++ {
		n := 0
		q := SelectFrom("t").Where(randomTupleTree(r, 3, &n))

		out, err := HoistTupleSelects(q)
		require.NoError(t, err)
		s := out.(*Select)
		require.Len(t, s.CTEs, n)

		position := map[string]int{}
		bodies := map[string]*Select{}
		for j, c := range s.CTEs {
			position[c.Name] = j
			bodies[c.Name] = c.Query.(*Select)
		}
		for j, c := range s.CTEs {
			for _, ref := range cteRefs(bodies[c.Name]) {
				require.Contains(t, position, ref)
				assert.Less(t, position[ref], j, "%s refers to %s", c.Name, ref)
			}
		}

		var walked []string
		preorder(s, bodies, &walked)
		want := make([]string, n)
		for j := range want {
			want[j] = "cte_" + strconv.Itoa(j)
		}
		if n == 0 {
			want = nil
		}
		assert.Equal(t, want, walked)
	}
}

func TestHoistStartsAfterDeclaredCTEs(t *testing.T) {
	q := SelectFrom("t").
		With("base", SelectFrom("b")).
		Where(tupleIn(SelectFrom("u").Column("a", "b")))

	out, err := HoistTupleSelects(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "cte_1"}, cteNames(out.(*Select).CTEs))
	assert.Equal(t, []string{"base"}, cteNames(q.CTEs))
}

func TestHoistIsIdempotent(t *testing.T) {
	q := SelectFrom("t").Where(tupleIn(SelectFrom("u").Column("a", "b")))
	once, err := HoistTupleSelects(q)
	require.NoError(t, err)
	twice, err := HoistTupleSelects(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

// =========================================================================
// Statement Tests
// =========================================================================

func TestHoistStatements(t *testing.T) {
	sub := func() *Select { return SelectFrom("u").Column("a", "b") }

	t.Run("insert", func(t *testing.T) {
		source := SelectFrom("a").With("seed", SelectFrom("s")).Where(tupleIn(sub()))
		ins := InsertFromSelect("b", []any{"x"}, source)

		out, err := HoistTupleSelects(ins)
		require.NoError(t, err)
		hoisted := out.(*Insert)
		assert.Equal(t, []string{"seed", "cte_1"}, cteNames(hoisted.CTEs))
		assert.Empty(t, hoisted.Source.Select.CTEs)
		assert.Empty(t, ins.CTEs)
		assert.Len(t, source.CTEs, 1)
	})

	t.Run("union", func(t *testing.T) {
		u := NewUnion(SelectFrom("a").Where(tupleIn(sub()))).All(SelectFrom("c").Where(tupleIn(sub())))

		out, err := HoistTupleSelects(u)
		require.NoError(t, err)
		hoisted := out.(*Union)
		assert.Equal(t, []string{"cte_0", "cte_1"}, cteNames(hoisted.CTEs))
		for _, s := range hoisted.Selects {
			assert.Empty(t, s.CTEs)
		}
		assert.Equal(t, []string{"cte_0"}, cteRefs(hoisted.Selects[0]))
		assert.Equal(t, []string{"cte_1"}, cteRefs(hoisted.Selects[1]))
		assert.Empty(t, u.CTEs)
	})

	t.Run("update", func(t *testing.T) {
		upd := UpdateTable("t").Set("n", 1).Where(tupleIn(sub()))

		out, err := HoistTupleSelects(upd)
		require.NoError(t, err)
		hoisted := out.(*Update)
		assert.Equal(t, []string{"cte_0"}, cteNames(hoisted.CTEs))
		assert.Empty(t, upd.CTEs)
		assert.IsType(t, Compare{}, upd.Conditions.Exprs[0].Node)
		assert.Equal(t, OpIn, comparesIn(upd.Conditions)[0].Op)
		assert.Equal(t, sub(), comparesIn(upd.Conditions)[0].Right.Node)
	})

	t.Run("delete", func(t *testing.T) {
		del := DeleteFrom("t").Where(Not(tupleIn(sub())))

		out, err := HoistTupleSelects(del)
		require.NoError(t, err)
		assert.Equal(t, []string{"cte_0"}, cteNames(out.(*Delete).CTEs))
		assert.Empty(t, del.CTEs)
	})

	t.Run("raw query is left alone", func(t *testing.T) {
		raw := RawQuery{SQL: "SELECT 1"}
		out, err := HoistTupleSelects(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, out)
	})
}

func TestHoistErrors(t *testing.T) {
	tests := map[string]Query{
		"width":        SelectFrom("t").Where(tupleIn(SelectFrom("u").Column("a", "b", "c"))),
		"unnamed":      SelectFrom("t").Where(tupleIn(SelectFrom("u").Value(1).Column("b"))),
		"nil in union": &Union{Selects: []*Select{SelectFrom("a"), nil}, Types: []UnionType{UnionAll}},
	}
	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := HoistTupleSelects(q)
			require.Error(t, err)
			assert.ErrorIs(t, err, sqlerr.ErrConversion)
		})
	}
}
