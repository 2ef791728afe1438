// Package cache holds the prepared-statement and type-descriptor caches used
// by the execution layer.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/songww/xiayu/utils"
)

// DefaultStatementCacheSize is used when a cache is created with a
// non-positive size.
const DefaultStatementCacheSize = 256

// Preparer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// entry is a cached statement with the number of callers using it. An
// evicted entry is closed once the last of them releases it.
type entry struct {
	query string
	stmt  *sql.Stmt

	mu      sync.Mutex
	refs    int
	evicted bool
}

func (e *entry) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evicted {
		return false
	}
	e.refs++
	return true
}

func (e *entry) release() {
	e.mu.Lock()
	e.refs--
	closing := e.evicted && e.refs == 0
	e.mu.Unlock()
	if closing {
		e.stmt.Close()
	}
}

func (e *entry) evict() {
	e.mu.Lock()
	e.evicted = true
	closing := e.refs == 0
	e.mu.Unlock()
	if closing {
		e.stmt.Close()
	}
}

// StatementCache keeps prepared statements for one database, keyed by the
// fingerprint of the dialect and SQL text. Statements handed out stay open
// until released, even when evicted in the meantime.
type StatementCache struct {
	dialect string
	cache   *lru.Cache[uint64, *entry]
	group   singleflight.Group
	mu      sync.RWMutex
}

func NewStatementCache(dialect string, size int) *StatementCache {
	if size <= 0 {
		size = DefaultStatementCacheSize
	}
	cache, _ := lru.NewWithEvict(size, func(_ uint64, e *entry) {
		e.evict()
	})

	return &StatementCache{
		dialect: dialect,
		cache:   cache,
	}
}

func (s *StatementCache) key(query string) uint64 {
	return utils.FingerprintStatement(s.dialect, query)
}

// Get returns the cached statement for query, if any. The caller must call
// release once done with the statement.
func (s *StatementCache) Get(query string) (stmt *sql.Stmt, release func(), ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.cache.Get(s.key(query))
	if !ok || e.query != query || !e.acquire() {
		return nil, nil, false
	}
	return e.stmt, e.release, true
}

// GetOrPrepare returns a cached statement or prepares one. Concurrent misses
// for the same query prepare it once. A fingerprint collision with another
// query yields an uncached statement. Either way the caller must call
// release once done with the statement; rows still open at that point keep
// it alive until they are closed.
func (s *StatementCache) GetOrPrepare(ctx context.Context, db Preparer, query string) (stmt *sql.Stmt, release func(), err error) {
	if stmt, release, ok := s.Get(query); ok {
		return stmt, release, nil
	}

	key := s.key(query)
	v, err, _ := s.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Double-check after acquiring the write lock
		if e, ok := s.cache.Get(key); ok {
			return e, nil
		}

		stmt, err := db.PrepareContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("preparing statement: %w", err)
		}
		e := &entry{query: query, stmt: stmt}
		s.cache.Add(key, e)
		return e, nil
	})
	if err != nil {
		return nil, nil, err
	}

	e := v.(*entry)
	if e.query == query && e.acquire() {
		return e.stmt, e.release, nil
	}
	// A colliding query, or an entry evicted before it could be acquired.
	stmt, err = db.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("preparing statement: %w", err)
	}
	return stmt, func() { stmt.Close() }, nil
}

func (s *StatementCache) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Len()
}

// Purge drops every cached statement, closing those not in use.
func (s *StatementCache) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}

func (s *StatementCache) Close() error {
	s.Purge()
	return nil
}
