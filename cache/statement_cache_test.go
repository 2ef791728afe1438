package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*StatementCache, sqlmock.Sqlmock, Preparer) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStatementCache("postgres", 2), mock, db
}

func TestStatementCachePreparesOnce(t *testing.T) {
	c, mock, db := newMock(t)
	mock.ExpectPrepare("SELECT $1")

	ctx := context.Background()
	first, release, err := c.GetOrPrepare(ctx, db, "SELECT $1")
	require.NoError(t, err)
	release()

	second, release, err := c.GetOrPrepare(ctx, db, "SELECT $1")
	require.NoError(t, err)
	release()
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())

	got, release, ok := c.Get("SELECT $1")
	require.True(t, ok)
	release()
	assert.Same(t, first, got)

	_, _, ok = c.Get("SELECT $2")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementCacheClosesEvicted(t *testing.T) {
	c, mock, db := newMock(t)
	mock.ExpectPrepare("SELECT 1").WillBeClosed()
	mock.ExpectPrepare("SELECT 2")
	mock.ExpectPrepare("SELECT 3")

	ctx := context.Background()
	for _, q := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		_, release, err := c.GetOrPrepare(ctx, db, q)
		require.NoError(t, err)
		release()
	}
	assert.Equal(t, 2, c.Len())
	_, _, ok := c.Get("SELECT 1")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementCacheEvictedWhileInUse(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	c := NewStatementCache("postgres", 1)

	mock.ExpectPrepare("SELECT 1").WillBeClosed()
	mock.ExpectPrepare("SELECT 2")
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	ctx := context.Background()
	held, release, err := c.GetOrPrepare(ctx, db, "SELECT 1")
	require.NoError(t, err)

	_, releaseOther, err := c.GetOrPrepare(ctx, db, "SELECT 2")
	require.NoError(t, err)
	releaseOther()
	_, _, ok := c.Get("SELECT 1")
	assert.False(t, ok)

	rows, err := held.QueryContext(ctx)
	require.NoError(t, err)
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, rows.Close())

	release()
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = held.QueryContext(ctx)
	assert.Error(t, err)
}

func TestStatementCacheConcurrentMisses(t *testing.T) {
	c, mock, db := newMock(t)
	mock.ExpectPrepare("SELECT 1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release, err := c.GetOrPrepare(context.Background(), db, "SELECT 1")
			if assert.NoError(t, err) {
				release()
			}
		}()
	}
	wg.Wait()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementCachePrepareError(t *testing.T) {
	c, mock, db := newMock(t)
	boom := errors.New("boom")
	mock.ExpectPrepare("SELECT 1").WillReturnError(boom)

	_, _, err := c.GetOrPrepare(context.Background(), db, "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestStatementCachePurge(t *testing.T) {
	c, mock, db := newMock(t)
	mock.ExpectPrepare("SELECT 1").WillBeClosed()

	_, release, err := c.GetOrPrepare(context.Background(), db, "SELECT 1")
	require.NoError(t, err)
	release()
	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTypeCache(t *testing.T) {
	type entity struct{ ID int }
	c := NewTypeCache[string]()
	calls := 0
	build := func(typ reflect.Type) (string, error) {
		calls++
		return typ.Name(), nil
	}

	typ := reflect.TypeOf(entity{})
	v, err := c.GetOrSet(typ, build)
	require.NoError(t, err)
	assert.Equal(t, "entity", v)

	v, err = c.GetOrSet(typ, build)
	require.NoError(t, err)
	assert.Equal(t, "entity", v)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrSet(reflect.TypeOf(0), func(reflect.Type) (string, error) {
		return "", errors.New("nope")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())
}
