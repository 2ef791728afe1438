package cache

import (
	"reflect"
	"sync"
)

// TypeCache memoizes a value derived from a Go type, such as the entity
// descriptor of a struct.
type TypeCache[T any] struct {
	mu   sync.RWMutex
	data map[reflect.Type]T
}

func NewTypeCache[T any]() *TypeCache[T] {
	return &TypeCache[T]{
		data: make(map[reflect.Type]T),
	}
}

// GetOrSet returns the cached value for typ, building it on a miss. Errors
// are not cached.
func (c *TypeCache[T]) GetOrSet(typ reflect.Type, build func(reflect.Type) (T, error)) (T, error) {
	c.mu.RLock()
	if existing, ok := c.data[typ]; ok {
		c.mu.RUnlock()
		return existing, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.data[typ]; ok {
		return existing, nil
	}
	v, err := build(typ)
	if err != nil {
		var zero T
		return zero, err
	}
	c.data[typ] = v
	return v, nil
}

func (c *TypeCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
