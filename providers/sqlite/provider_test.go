package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/connector"
	"github.com/songww/xiayu/database"
	"github.com/songww/xiayu/schema"
)

const usersDDL = `CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	age INTEGER
)`

func openUsers(t *testing.T, path string) (*connector.SQLConnection, *database.Executor) {
	t.Helper()
	ctx := context.Background()
	conn, err := connector.Open(ctx, connector.Config{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	sc := conn.(*connector.SQLConnection)
	_, err = sc.DB().ExecContext(ctx, usersDDL)
	require.NoError(t, err)
	return sc, connector.Executor(conn)
}

func names(t *testing.T, rows database.Rows) []string {
	t.Helper()
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(connector.Config{Path: "app.db", Params: map[string]string{"_journal_mode": "WAL"}})
	assert.Equal(t, "file:app.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL", dsn)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, exec := openUsers(t, memoryPath)
	assert.Equal(t, "sqlite", conn.Dialect().Name())
	require.NoError(t, conn.Health(ctx))

	ins := ast.MultiInsert("users", "name", "age").
		Values("ann", 30).
		Values("bob", 25).
		Returning("id")
	rows, err := exec.Query(ctx, ins)
	require.NoError(t, err)
	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, []int64{1, 2}, ids)

	older, err := exec.Query(ctx, ast.SelectFrom("users").Column("name").Where(ast.Col("age").GreaterThan(26)))
	require.NoError(t, err)
	assert.Equal(t, []string{"ann"}, names(t, older))

	skipped, err := exec.Query(ctx, ast.SelectFrom("users").
		Column("name").
		OrderBy(ast.Col("id").Asc()).
		Offset(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, names(t, skipped))

	tuple, err := exec.Query(ctx, ast.SelectFrom("users").
		Column("name").
		Where(ast.NewRow(ast.Col("name"), ast.Col("age")).In(ast.NewValues(ast.NewRow("bob", 25)))))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, names(t, tuple))

	res, err := exec.Exec(ctx, ast.SingleInsert("users").Value("name", "ann").OnConflict(ast.ConflictDoNothing))
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Zero(t, n)

	res, err = exec.Exec(ctx, ast.UpdateTable("users").Set("age", 31).Where(ast.Col("name").Equals("ann")))
	require.NoError(t, err)
	n, err = res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = exec.Exec(ctx, ast.DeleteFrom("users").Where(ast.Col("name").Equals("bob")))
	require.NoError(t, err)
	left, err := exec.Query(ctx, ast.SelectFrom("users").Column("name"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ann"}, names(t, left))

	stats := exec.Stats()
	assert.EqualValues(t, 5, stats.TotalQueries)
	assert.EqualValues(t, 3, stats.TotalExecs)
	assert.Positive(t, conn.Database().(*database.SQLDatabase).Statements().Len())
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	_, exec := openUsers(t, path)

	_, err := exec.Exec(context.Background(), ast.SingleInsert("users").Value("name", "cy").Value("age", 40))
	require.NoError(t, err)

	rows, err := exec.Query(context.Background(), ast.SelectFrom("users").Column("name"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cy"}, names(t, rows))
}

type user struct {
	ID   int64  `db:"primary_key;autoincrement"`
	Name string `db:"unique"`
	Age  *int64
}

func TestEntityRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, exec := openUsers(t, memoryPath)

	e, err := schema.Describe(user{})
	require.NoError(t, err)
	require.Equal(t, "users", e.TableName())

	age := int64(41)
	ins, err := e.Insert(user{Name: "dee", Age: &age})
	require.NoError(t, err)
	_, err = exec.Exec(ctx, ins)
	require.NoError(t, err)

	dup, err := e.Insert(user{Name: "dee"})
	require.NoError(t, err)
	res, err := exec.Exec(ctx, dup.OnConflict(ast.ConflictDoNothing))
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Zero(t, n)

	upd, err := e.Update(user{ID: 1, Name: "dee"})
	require.NoError(t, err)
	_, err = exec.Exec(ctx, upd)
	require.NoError(t, err)

	rows, err := exec.Query(ctx, e.Select())
	require.NoError(t, err)
	defer rows.Close()
	users, err := schema.ScanAll[user](rows)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user{ID: 1, Name: "dee"}, users[0])

	del, err := e.Delete(users[0])
	require.NoError(t, err)
	res, err = exec.Exec(ctx, del)
	require.NoError(t, err)
	n, err = res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
