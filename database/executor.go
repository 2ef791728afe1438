package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
	"github.com/songww/xiayu/visitor"
)

// DefaultSlowThreshold is the duration above which a statement is logged as
// slow.
const DefaultSlowThreshold = 100 * time.Millisecond

// Executor compiles queries for one dialect, binds their parameters and runs
// them on a Database.
type Executor struct {
	db            Database
	dialect       dialect.Dialect
	logger        *slog.Logger
	slowThreshold time.Duration
	stats         QueryStats
}

type Option func(*Executor)

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSlowThreshold sets the slow statement threshold. Zero or less disables
// slow statement detection.
func WithSlowThreshold(d time.Duration) Option {
	return func(e *Executor) {
		e.slowThreshold = d
	}
}

func NewExecutor(db Database, d dialect.Dialect, opts ...Option) *Executor {
	e := &Executor{
		db:            db,
		dialect:       d,
		logger:        slog.Default(),
		slowThreshold: DefaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Dialect() dialect.Dialect { return e.dialect }

// Compile renders q and binds its parameters for the driver.
func (e *Executor) Compile(q ast.Query) (string, []any, error) {
	query, values, err := visitor.Build(e.dialect, q)
	if err != nil {
		return "", nil, err
	}
	args, err := BindAll(e.dialect, values)
	if err != nil {
		return "", nil, err
	}
	return query, args, nil
}

// Query runs q and returns its rows.
func (e *Executor) Query(ctx context.Context, q ast.Query) (Rows, error) {
	query, args, err := e.Compile(q)
	if err != nil {
		e.logger.DebugContext(ctx, "query compilation failed", slog.String("dialect", e.dialect.Name()), slog.Any("error", err))
		return nil, err
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, query, args...)
	e.record(ctx, query, start, err, true)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exec runs q without reading rows.
func (e *Executor) Exec(ctx context.Context, q ast.Query) (Result, error) {
	query, args, err := e.Compile(q)
	if err != nil {
		e.logger.DebugContext(ctx, "query compilation failed", slog.String("dialect", e.dialect.Name()), slog.Any("error", err))
		return nil, err
	}

	start := time.Now()
	res, err := e.db.ExecContext(ctx, query, args...)
	e.record(ctx, query, start, err, false)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Stats returns a snapshot of the executor's counters.
func (e *Executor) Stats() StatsSnapshot {
	return e.stats.Snapshot()
}

func (e *Executor) ResetStats() {
	e.stats.Reset()
}

func (e *Executor) record(ctx context.Context, query string, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		e.stats.TotalQueries.Add(1)
	} else {
		e.stats.TotalExecs.Add(1)
	}
	e.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		e.stats.Errors.Add(1)
		e.logger.LogAttrs(ctx, slog.LevelDebug, "query failed",
			slog.String("query", query),
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)
	}

	if e.slowThreshold > 0 && duration > e.slowThreshold {
		e.stats.SlowQueries.Add(1)
		e.logger.LogAttrs(ctx, slog.LevelWarn, "slow query detected",
			slog.String("query", query),
			slog.Duration("duration", duration),
			slog.Duration("threshold", e.slowThreshold),
		)
	}
}
