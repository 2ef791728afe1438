package connector

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/songww/xiayu/database"
	"github.com/songww/xiayu/dialect"
)

// Cluster is a primary connection with read replicas. As a Connection it
// behaves like its primary.
type Cluster struct {
	strategy string
	primary  Connection
	replicas []Connection
	mu       sync.Mutex
	readIdx  int
}

// OpenCluster connects the primary and every replica. Connections opened
// before a failure are closed.
func OpenCluster(ctx context.Context, cfg ClusterConfig, opts ...Option) (*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	primary, err := Open(ctx, cfg.Primary, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to primary: %w", err)
	}

	replicas := make([]Connection, 0, len(cfg.Replicas))
	for i, rc := range cfg.Replicas {
		replica, err := Open(ctx, rc, opts...)
		if err != nil {
			primary.Close()
			for _, r := range replicas {
				r.Close()
			}
			return nil, fmt.Errorf("failed to connect to replica %d: %w", i, err)
		}
		replicas = append(replicas, replica)
	}
	return NewCluster(cfg.ReadStrategy, primary, replicas...), nil
}

// NewCluster groups already open connections.
func NewCluster(strategy string, primary Connection, replicas ...Connection) *Cluster {
	return &Cluster{strategy: strategy, primary: primary, replicas: replicas}
}

func (pc *Cluster) Primary() Connection { return pc.primary }

func (pc *Cluster) Replicas() []Connection { return pc.replicas }

// Read returns a connection for read operations based on the configured strategy.
func (pc *Cluster) Read() Connection {
	if len(pc.replicas) == 0 {
		return pc.primary
	}

	switch pc.strategy {
	case ReadRandom:
		return pc.replicas[rand.Intn(len(pc.replicas))]
	case ReadRoundRobin:
		pc.mu.Lock()
		idx := pc.readIdx % len(pc.replicas)
		pc.readIdx++
		pc.mu.Unlock()
		return pc.replicas[idx]
	default:
		return pc.primary
	}
}

// Write always returns the primary.
func (pc *Cluster) Write() Connection { return pc.primary }

func (pc *Cluster) Database() database.Database { return pc.primary.Database() }

func (pc *Cluster) Dialect() dialect.Dialect { return pc.primary.Dialect() }

// Health checks the primary and every replica.
func (pc *Cluster) Health(ctx context.Context) error {
	if err := pc.primary.Health(ctx); err != nil {
		return fmt.Errorf("primary health check failed: %w", err)
	}
	for i, replica := range pc.replicas {
		if err := replica.Health(ctx); err != nil {
			return fmt.Errorf("replica %d health check failed: %w", i, err)
		}
	}
	return nil
}

// Stats sums the statistics of all connections.
func (pc *Cluster) Stats() ConnectionStats {
	stats := pc.primary.Stats()
	for _, replica := range pc.replicas {
		stats = stats.add(replica.Stats())
	}
	return stats
}

// Close closes every connection and joins their errors.
func (pc *Cluster) Close() error {
	errs := []error{pc.primary.Close()}
	for _, replica := range pc.replicas {
		errs = append(errs, replica.Close())
	}
	return errors.Join(errs...)
}

var _ Connection = (*Cluster)(nil)
