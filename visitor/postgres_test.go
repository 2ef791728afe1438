package visitor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/sqlerr"
)

func buildPostgres(t *testing.T, q ast.Query) (string, []ast.Value) {
	t.Helper()
	sql, params, err := NewPostgres().Build(q)
	require.NoError(t, err)
	return sql, params
}

func TestPostgresSelectValue(t *testing.T) {
	sql, params := buildPostgres(t, ast.NewSelect().Value(ast.Int32(1)))
	assert.Equal(t, "SELECT $1", sql)
	assert.Equal(t, []ast.Value{ast.Int32(1)}, params)
}

func TestPostgresSelectStar(t *testing.T) {
	sql, params := buildPostgres(t, ast.SelectFrom("musti"))
	assert.Equal(t, `SELECT "musti".* FROM "musti"`, sql)
	assert.Empty(t, params)
}

func TestPostgresWhereNesting(t *testing.T) {
	q := ast.SelectFrom("naukio").Where(ast.And(
		ast.Col("word").Equals("meow"),
		ast.Or(ast.Col("age").LessThan(10), ast.Col("paw").Equals("warm")),
		ast.Not(ast.And(ast.Col("a").IsNull(), ast.Col("b").IsNotNull())),
	))
	sql, params := buildPostgres(t, q)
	assert.Equal(t,
		`SELECT "naukio".* FROM "naukio" WHERE "word" = $1 AND ("age" < $2 OR "paw" = $3) AND (NOT ("a" IS NULL AND "b" IS NOT NULL))`,
		sql)
	assert.Equal(t, []ast.Value{ast.Text("meow"), ast.Int64(10), ast.Text("warm")}, params)
}

func TestPostgresEmptyGroups(t *testing.T) {
	sql, _ := buildPostgres(t, ast.SelectFrom("t").Where(ast.And()))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE 1=1`, sql)

	sql, _ = buildPostgres(t, ast.SelectFrom("t").Where(ast.Or()))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE 1=0`, sql)
}

func TestPostgresPagination(t *testing.T) {
	sql, params := buildPostgres(t, ast.SelectFrom("t").Limit(10).Offset(2))
	assert.Equal(t, `SELECT "t".* FROM "t" LIMIT $1 OFFSET $2`, sql)
	assert.Equal(t, []ast.Value{ast.Int64(10), ast.Int64(2)}, params)

	sql, params = buildPostgres(t, ast.SelectFrom("t").Offset(10))
	assert.Equal(t, `SELECT "t".* FROM "t" OFFSET $1`, sql)
	assert.Equal(t, []ast.Value{ast.Int64(10)}, params)
}

func TestPostgresJoinsAndAliases(t *testing.T) {
	users := ast.NewTable("users").As("u")
	posts := ast.NewTable("posts").As("p")
	q := ast.SelectFrom(users).
		Column(users.Col("id"), posts.Col("title").As("t")).
		LeftJoin(posts.On(posts.Col("user_id").Equals(users.Col("id")))).
		OrderBy(users.Col("id").Desc())
	sql, _ := buildPostgres(t, q)
	assert.Equal(t,
		`SELECT "u"."id", "p"."title" AS "t" FROM "users" AS "u" LEFT JOIN "posts" AS "p" ON "p"."user_id" = "u"."id" ORDER BY "u"."id" DESC`,
		sql)
}

func TestPostgresGroupHaving(t *testing.T) {
	q := ast.SelectFrom("t").
		Column("kind", ast.Count().As("n")).
		GroupBy("kind").
		Having(ast.Count().GreaterThan(1))
	sql, params := buildPostgres(t, q)
	assert.Equal(t, `SELECT "kind", COUNT(*) AS "n" FROM "t" GROUP BY "kind" HAVING COUNT(*) > $1`, sql)
	assert.Equal(t, []ast.Value{ast.Int64(1)}, params)
}

func TestPostgresLike(t *testing.T) {
	q := ast.SelectFrom("t").Where(ast.And(
		ast.Col("a").Like("foo"),
		ast.Col("b").NotBeginsWith("bar"),
		ast.Col("c").EndsInto("baz"),
	))
	sql, params := buildPostgres(t, q)
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE "a" LIKE $1 AND "b" NOT LIKE $2 AND "c" LIKE $3`, sql)
	assert.Equal(t, []ast.Value{ast.Text("%foo%"), ast.Text("bar%"), ast.Text("%baz")}, params)
}

func TestPostgresInLists(t *testing.T) {
	sql, params := buildPostgres(t, ast.SelectFrom("t").Where(ast.Col("id").In([]int{1, 2})))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE "id" IN ($1,$2)`, sql)
	assert.Equal(t, []ast.Value{ast.Int64(1), ast.Int64(2)}, params)

	sql, _ = buildPostgres(t, ast.SelectFrom("t").Where(ast.Col("id").In([]int{})))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE 1=0`, sql)

	sql, _ = buildPostgres(t, ast.SelectFrom("t").Where(ast.Col("id").NotIn(ast.NewValues())))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE 1=1`, sql)
}

func TestPostgresTupleIn(t *testing.T) {
	row := ast.NewRow(ast.Col("a"), ast.Col("b"))
	vals := ast.NewValues(ast.NewRow(1, 2), ast.NewRow(3, 4))
	sql, params := buildPostgres(t, ast.SelectFrom("t").Where(row.In(vals)))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE ("a","b") IN (($1,$2), ($3,$4))`, sql)
	assert.Len(t, params, 4)

	single := ast.NewRow(ast.Col("a"))
	sql, _ = buildPostgres(t, ast.SelectFrom("t").Where(single.In(ast.NewValues(ast.NewRow(1), ast.NewRow(2)))))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE "a" IN ($1,$2)`, sql)
}

func TestPostgresJSONCasts(t *testing.T) {
	doc := ast.Col("doc").WithFamily(ast.TypeFamily{Kind: ast.FamilyJSON})
	sql, _ := buildPostgres(t, ast.SelectFrom("t").Where(doc.Equals("x")))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE "doc" = $1::jsonb`, sql)

	raw := ast.JSON(json.RawMessage(`{"a":1}`))
	sql, _ = buildPostgres(t, ast.SelectFrom("t").Where(ast.Col("plain").NotEquals(raw)))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE "plain"::jsonb <> $1`, sql)

	sql, _ = buildPostgres(t, ast.SelectFrom("t").Where(doc.Equals(raw)))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE "doc"::jsonb = $1::jsonb`, sql)
}

func TestPostgresXMLCasts(t *testing.T) {
	sql, _ := buildPostgres(t, ast.SelectFrom("t").Where(ast.Col("x").Equals(ast.XML("<a/>"))))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE "x"::text = $1`, sql)

	doc := ast.Col("doc").WithFamily(ast.TypeFamily{Kind: ast.FamilyXML})
	sql, _ = buildPostgres(t, ast.SelectFrom("T").Where(doc.Equals(ast.XML("<a/>"))))
	assert.Equal(t, `SELECT "T".* FROM "T" WHERE "doc"::text = $1`, sql)

	sql, _ = buildPostgres(t, ast.SelectFrom("t").Where(ast.Col("x").NotEquals(ast.XML("<a/>"))))
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE "x"::text <> $1`, sql)
}

func TestPostgresJSONFilters(t *testing.T) {
	doc := ast.Col("doc")
	arr := ast.JSON(json.RawMessage(`[1]`))
	tests := []struct {
		cond ast.Compare
		want string
	}{
		{doc.JSONArrayContains(arr), `"doc" @> $1`},
		{doc.JSONArrayNotContains(arr), `NOT ("doc" @> $1)`},
		{doc.JSONArrayBeginsWith(arr), `"doc"->0 = $1`},
		{doc.JSONArrayNotEndsInto(arr), `NOT ("doc"->-1 = $1)`},
		{doc.JSONTypeEquals(ast.JSONTypeArray), `JSONB_TYPEOF("doc") = $1`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			sql, params := buildPostgres(t, ast.SelectFrom("t").Where(tt.cond))
			assert.Equal(t, `SELECT "t".* FROM "t" WHERE `+tt.want, sql)
			assert.Len(t, params, 1)
		})
	}
}

func TestPostgresFunctions(t *testing.T) {
	q := ast.SelectFrom("t").Column(
		ast.RowNumber().Over([]ast.Column{ast.Col("kind")}, ast.Col("id").Asc()),
		ast.AggregateToString(ast.Col("name")),
		ast.JSONExtract(ast.Col("doc"), ast.JSONPathArray("a", "b"), true),
	)
	sql, params := buildPostgres(t, q)
	assert.Equal(t,
		`SELECT ROW_NUMBER() OVER(PARTITION BY "kind" ORDER BY "id" ASC), ARRAY_TO_STRING(ARRAY_AGG("name"), ','), ("doc"#>>ARRAY[$1, $2]::text[]) FROM "t"`,
		sql)
	assert.Equal(t, []ast.Value{ast.Text("a"), ast.Text("b")}, params)

	_, _, err := NewPostgres().Build(ast.NewSelect().Column(ast.JSONExtract(ast.Col("doc"), ast.JSONPathString("$.a"), false)))
	assert.ErrorIs(t, err, sqlerr.ErrUnsupported)
}

func TestPostgresFullTextSearch(t *testing.T) {
	q := ast.SelectFrom("t").Where(ast.TextSearch("name", "bio").Matches("cat"))
	sql, params := buildPostgres(t, q)
	assert.Equal(t, `SELECT "t".* FROM "t" WHERE to_tsvector(concat_ws(' ', "name", "bio")) @@ to_tsquery($1)`, sql)
	assert.Equal(t, []ast.Value{ast.Text("cat")}, params)
}

func TestPostgresRowToJSON(t *testing.T) {
	users := ast.NewTable("users")
	sql, _ := buildPostgres(t, ast.SelectFrom(users).Column(ast.RowToJSON(users, true)))
	assert.Equal(t, `SELECT ROW_TO_JSON("users", true) FROM "users"`, sql)
}

func TestPostgresInsert(t *testing.T) {
	ins := ast.SingleInsert("users").Value("name", "musti").Value("age", 3).Returning("id")
	sql, params := buildPostgres(t, ins)
	assert.Equal(t, `INSERT INTO "users" ("name", "age") VALUES ($1,$2) RETURNING "id"`, sql)
	assert.Equal(t, []ast.Value{ast.Text("musti"), ast.Int64(3)}, params)

	multi := ast.MultiInsert("t", "a", "b").Values(1, 2).Values(3, 4).OnConflict(ast.ConflictDoNothing)
	sql, params = buildPostgres(t, multi)
	assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES ($1,$2), ($3,$4) ON CONFLICT DO NOTHING`, sql)
	assert.Len(t, params, 4)

	sql, _ = buildPostgres(t, ast.SingleInsert("t"))
	assert.Equal(t, `INSERT INTO "t" DEFAULT VALUES`, sql)
}

func TestPostgresInsertFromSelect(t *testing.T) {
	src := ast.SelectFrom("old").Column("a", "b")
	sql, _ := buildPostgres(t, ast.InsertFromSelect("new", []any{"a", "b"}, src))
	assert.Equal(t, `INSERT INTO "new" ("a", "b") SELECT "a", "b" FROM "old"`, sql)
}

func TestPostgresUpdateDelete(t *testing.T) {
	upd := ast.UpdateTable("users").Set("name", "naukio").Set("age", ast.Add(ast.Col("age"), 1)).Where(ast.Col("id").Equals(7))
	sql, params := buildPostgres(t, upd)
	assert.Equal(t, `UPDATE "users" SET "name" = $1, "age" = ("age" + $2) WHERE "id" = $3`, sql)
	assert.Equal(t, []ast.Value{ast.Text("naukio"), ast.Int64(1), ast.Int64(7)}, params)

	sql, params = buildPostgres(t, ast.DeleteFrom("users").Where(ast.Col("id").Equals(7)))
	assert.Equal(t, `DELETE FROM "users" WHERE "id" = $1`, sql)
	assert.Equal(t, []ast.Value{ast.Int64(7)}, params)

	_, _, err := NewPostgres().Build(ast.UpdateTable("users"))
	assert.ErrorIs(t, err, sqlerr.ErrConversion)
}

func TestPostgresUnion(t *testing.T) {
	u := ast.NewUnion(ast.SelectFrom("a").Value(1)).All(ast.SelectFrom("b").Value(2)).Distinct(ast.SelectFrom("c").Value(3))
	sql, params := buildPostgres(t, u)
	assert.Equal(t, `(SELECT $1 FROM "a") UNION ALL (SELECT $2 FROM "b") UNION (SELECT $3 FROM "c")`, sql)
	assert.Equal(t, []ast.Value{ast.Int64(1), ast.Int64(2), ast.Int64(3)}, params)
}

func TestPostgresSubSelectKeepsOwnOrdering(t *testing.T) {
	inner := ast.SelectFrom("b").Column("id").Where(ast.Or(ast.Col("x").Equals(1), ast.Col("y").Equals(2)))
	q := ast.SelectFrom("a").Where(ast.And(ast.Col("id").In(inner), ast.Col("z").Equals(3)))
	sql, _ := buildPostgres(t, q)
	assert.Equal(t,
		`SELECT "a".* FROM "a" WHERE "id" IN (SELECT "id" FROM "b" WHERE "x" = $1 OR "y" = $2) AND "z" = $3`,
		sql)
}

func TestPostgresRawQuery(t *testing.T) {
	sql, params := buildPostgres(t, ast.NewRawQuery("SELECT 1 WHERE $1", ast.Boolean(true)))
	assert.Equal(t, "SELECT 1 WHERE $1", sql)
	assert.Equal(t, []ast.Value{ast.Boolean(true)}, params)
}

func TestPostgresRawValue(t *testing.T) {
	sql, params := buildPostgres(t, ast.NewSelect().Column(ast.Text("it's").Raw()))
	assert.Equal(t, `SELECT 'it''s'`, sql)
	assert.Empty(t, params)
}

func TestPostgresRejectsMerge(t *testing.T) {
	m, err := ast.MergeFromInsert(ast.SingleInsert(ast.NewTable("t").AddUniqueIndex("a")).Value("a", 1))
	require.NoError(t, err)
	_, _, err = NewPostgres().Build(m)
	require.Error(t, err)
	assert.ErrorIs(t, err, sqlerr.ErrUnsupported)
	var e *sqlerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "postgres", e.Dialect)
}
