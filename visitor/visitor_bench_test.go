package visitor

import (
	"testing"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
)

func benchSelect() *ast.Select {
	return ast.SelectFrom("users").
		Column("id", "first_name", "email", "created_at", "updated_at").
		Where(ast.Col("id").Equals(123)).
		Limit(1)
}

func BenchmarkVisitorBuild(b *testing.B) {
	v := NewPostgres()
	stmt := benchSelect()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = v.Build(stmt)
	}
	b.ReportAllocs()
}

func BenchmarkVisitorBuildPooled(b *testing.B) {
	stmt := benchSelect()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = Build(dialect.Postgres{}, stmt)
	}
	b.ReportAllocs()
}

func BenchmarkVisitorBuildMSSQLHoisting(b *testing.B) {
	inner := ast.SelectFrom("u").Column("a", "b")
	stmt := ast.SelectFrom("t").Where(ast.NewRow(ast.Col("x"), ast.Col("y")).In(inner)).Limit(10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = Build(dialect.MSSQL{}, stmt)
	}
	b.ReportAllocs()
}
