// Package schema derives table descriptors from Go structs. Entities map to
// ast tables and columns, and build inserts from struct values.
package schema

import (
	"fmt"
	"reflect"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/cache"
)

// Schema describes structs under one tag key and naming strategy. Entities
// are built once per type and cached.
type Schema struct {
	naming   NamingStrategy
	tagName  string
	parser   *TagParser
	entities *cache.TypeCache[*Entity]
}

type Option func(*Schema)

// WithNamingStrategy sets how field and struct names map to columns and
// tables.
func WithNamingStrategy(strategy NamingStrategy) Option {
	return func(s *Schema) { s.naming = strategy }
}

// WithTagName sets the struct tag key, "db" by default.
func WithTagName(tagName string) Option {
	return func(s *Schema) { s.tagName = tagName }
}

func New(opts ...Option) *Schema {
	s := &Schema{
		naming:   DefaultNamingStrategy(),
		tagName:  "db",
		entities: cache.NewTypeCache[*Entity](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = NewTagParser(s.tagName, s.naming)
	return s
}

var defaultSchema = New()

// Describe returns the entity of v, a struct, a pointer to one, or a
// reflect.Type of either.
func (s *Schema) Describe(v any) (*Entity, error) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return nil, fmt.Errorf("cannot describe nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot describe %s: not a struct", t)
	}
	return s.entities.GetOrSet(t, s.build)
}

// Cached reports how many entities have been built.
func (s *Schema) Cached() int { return s.entities.Len() }

// Describe uses the default schema.
func Describe(v any) (*Entity, error) { return defaultSchema.Describe(v) }

// Insert describes record with the default schema and builds its insert.
func Insert(record any) (*ast.Insert, error) {
	e, err := Describe(record)
	if err != nil {
		return nil, err
	}
	return e.Insert(record)
}
