package connector

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/database"
	"github.com/songww/xiayu/dialect"
)

type fakeConnection struct {
	name   string
	health error
	stats  ConnectionStats
	closed atomic.Bool
}

func (c *fakeConnection) Database() database.Database  { return nil }
func (c *fakeConnection) Dialect() dialect.Dialect     { return dialect.SQLite{} }
func (c *fakeConnection) Health(context.Context) error { return c.health }
func (c *fakeConnection) Stats() ConnectionStats       { return c.stats }
func (c *fakeConnection) Close() error                 { c.closed.Store(true); return nil }

// flakyProvider fails until it has been called failures+1 times.
type flakyProvider struct {
	failures int32
	calls    atomic.Int32
	last     Config
}

func (p *flakyProvider) Connect(_ context.Context, cfg Config) (Connection, error) {
	p.last = cfg
	if p.calls.Add(1) <= p.failures {
		return nil, errors.New("connection refused")
	}
	return &fakeConnection{name: cfg.Host}, nil
}

func (p *flakyProvider) Dialect() dialect.Dialect { return dialect.SQLite{} }

func TestRegistry(t *testing.T) {
	Register("fake-registry", &flakyProvider{})
	assert.Contains(t, Providers(), "fake-registry")

	_, err := New("nope", Config{})
	assert.Error(t, err)

	c, err := New("fake-registry", Config{Host: "h"})
	require.NoError(t, err)
	conn, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "h", conn.(*fakeConnection).name)
}

func TestNewAppliesDefaults(t *testing.T) {
	p := &flakyProvider{}
	Register("fake-defaults", p)

	c, err := New("fake-defaults", Config{})
	require.NoError(t, err)
	_, err = c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, p.last.Pool.MaxOpen)
	assert.Equal(t, 10*time.Second, p.last.ConnectTimeout)
}

func TestConnectWithRetry(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := &flakyProvider{failures: 2}
	Register("fake-retry", p)
	c, err := New("fake-retry", Config{}, WithLogger(logger))
	require.NoError(t, err)

	conn, err := c.ConnectWithRetry(context.Background(), RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
		Backoff:    2,
	})
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.EqualValues(t, 3, p.calls.Load())
	assert.Contains(t, buf.String(), "connection attempt failed")
	assert.Contains(t, buf.String(), "attempt=2")
}

func TestConnectWithRetryGivesUp(t *testing.T) {
	p := &flakyProvider{failures: 10}
	Register("fake-give-up", p)
	c, err := New("fake-give-up", Config{}, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	_, err = c.ConnectWithRetry(context.Background(), RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "connection refused")
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestConnectWithRetryHonorsCancellation(t *testing.T) {
	p := &flakyProvider{failures: 10}
	Register("fake-cancel", p)
	c, err := New("fake-cancel", Config{}, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.ConnectWithRetry(ctx, RetryConfig{MaxRetries: 5, BaseDelay: time.Hour})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestOpenRetriesWhenConfigured(t *testing.T) {
	p := &flakyProvider{failures: 1}
	Register("fake-open", p)

	cfg := Config{Driver: "fake-open", Retry: &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond}}
	conn, err := Open(context.Background(), cfg, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestCluster(t *testing.T) {
	primary := &fakeConnection{name: "p", stats: ConnectionStats{OpenConnections: 1}}
	r1 := &fakeConnection{name: "r1", stats: ConnectionStats{OpenConnections: 2, Idle: 1}}
	r2 := &fakeConnection{name: "r2", stats: ConnectionStats{OpenConnections: 3, InUse: 2}}

	rr := NewCluster(ReadRoundRobin, primary, r1, r2)
	assert.Same(t, r1, rr.Read())
	assert.Same(t, r2, rr.Read())
	assert.Same(t, r1, rr.Read())
	assert.Same(t, primary, rr.Write())
	assert.Equal(t, ConnectionStats{OpenConnections: 6, InUse: 2, Idle: 1}, rr.Stats())

	assert.Same(t, primary, NewCluster(ReadPrimary, primary, r1).Read())
	assert.Same(t, primary, NewCluster(ReadRoundRobin, primary).Read())

	r2.health = errors.New("down")
	err := rr.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replica 1")

	require.NoError(t, rr.Close())
	assert.True(t, primary.closed.Load())
	assert.True(t, r2.closed.Load())
}

func TestSQLConnection(t *testing.T) {
	db, mock, err := sqlmock.New(
		sqlmock.MonitorPingsOption(true),
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
	)
	require.NoError(t, err)

	mock.ExpectPing()
	cfg := Config{StatementCacheSize: -1}
	cfg.ApplyDefaults()
	conn, err := OpenSQL(context.Background(), db, dialect.SQLite{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, dialect.NameSQLite, conn.Dialect().Name())
	assert.Nil(t, conn.Database().(*database.SQLDatabase).Statements())

	mock.ExpectExec("DELETE FROM `t` WHERE `id` = ?").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = Executor(conn).Exec(context.Background(), ast.DeleteFrom("t").Where(ast.Col("id").Equals(1)))
	require.NoError(t, err)

	mock.ExpectPing()
	require.NoError(t, conn.Health(context.Background()))
	assert.GreaterOrEqual(t, conn.Stats().OpenConnections, 1)

	mock.ExpectClose()
	require.NoError(t, conn.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSQLClosesOnFailedPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("no route"))
	mock.ExpectClose()
	cfg := Config{}
	cfg.ApplyDefaults()
	_, err = OpenSQL(context.Background(), db, dialect.MySQL{}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to mysql")
	assert.NoError(t, mock.ExpectationsWereMet())
}
