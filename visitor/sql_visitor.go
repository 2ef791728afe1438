package visitor

import (
	"sync"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
	"github.com/songww/xiayu/sqlerr"
)

var pools = map[string]*sync.Pool{
	dialect.NamePostgres: {New: func() any { return NewPostgres() }},
	dialect.NameMySQL:    {New: func() any { return NewMySQL() }},
	dialect.NameTiDB:     {New: func() any { return NewTiDB() }},
	dialect.NameSQLite:   {New: func() any { return NewSQLite() }},
	dialect.NameMSSQL:    {New: func() any { return NewMSSQL() }},
}

// Builder compiles a query into SQL text and its ordered parameters.
type Builder interface {
	Build(q ast.Query) (string, []ast.Value, error)
}

// New returns a fresh visitor for d. A visitor is not safe for concurrent
// use; the package level Build is.
func New(d dialect.Dialect) (Builder, error) {
	pool, ok := pools[d.Name()]
	if !ok {
		return nil, sqlerr.Unsupported("no visitor for dialect %q", d.Name())
	}
	return pool.New().(renderer), nil
}

// Build renders q for d using a pooled visitor.
func Build(d dialect.Dialect, q ast.Query) (string, []ast.Value, error) {
	pool, ok := pools[d.Name()]
	if !ok {
		return "", nil, sqlerr.Unsupported("no visitor for dialect %q", d.Name())
	}
	v := pool.Get().(renderer)
	defer func() {
		v.reset()
		pool.Put(v)
	}()
	return v.Build(q)
}
