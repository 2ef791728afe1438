package connector

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents database connection configuration.
type Config struct {
	// Driver names a registered provider, e.g. "postgres" or "sqlite".
	Driver   string            `json:"driver" yaml:"driver"`
	Host     string            `json:"host" yaml:"host"`
	Port     int               `json:"port" yaml:"port"`
	Database string            `json:"database" yaml:"database"`
	Username string            `json:"username" yaml:"username"`
	Password string            `json:"password" yaml:"password"`
	SSLMode  string            `json:"ssl_mode" yaml:"ssl_mode"`
	Params   map[string]string `json:"params" yaml:"params"`
	// Path is the SQLite database file, or ":memory:".
	Path           string        `json:"path" yaml:"path"`
	Pool           PoolConfig    `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration `json:"query_timeout" yaml:"query_timeout"`
	Retry          *RetryConfig  `json:"retry,omitempty" yaml:"retry,omitempty"`
	// StatementCacheSize bounds prepared statements kept by database/sql
	// based providers. Negative disables the cache.
	StatementCacheSize int `json:"statement_cache_size" yaml:"statement_cache_size"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time"`
}

// RetryConfig defines connection retry behavior.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`
	Backoff    float64       `json:"backoff" yaml:"backoff"`
}

// ClusterConfig defines a primary with read replicas.
type ClusterConfig struct {
	Primary      Config   `json:"primary" yaml:"primary"`
	Replicas     []Config `json:"replicas" yaml:"replicas"`
	ReadStrategy string   `json:"read_strategy" yaml:"read_strategy"`
}

const (
	ReadPrimary    = "primary"
	ReadRandom     = "random"
	ReadRoundRobin = "round_robin"
)

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML, applies defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadClusterConfig reads a YAML cluster config file.
func LoadClusterConfig(path string) (ClusterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClusterConfig{}, fmt.Errorf("reading config: %w", err)
	}
	var cc ClusterConfig
	if err := yaml.Unmarshal(data, &cc); err != nil {
		return ClusterConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	cc.Primary.ApplyDefaults()
	for i := range cc.Replicas {
		cc.Replicas[i].ApplyDefaults()
	}
	if err := cc.Validate(); err != nil {
		return ClusterConfig{}, err
	}
	return cc, nil
}

// ApplyDefaults fills zero pool and retry settings.
func (c *Config) ApplyDefaults() {
	if c.Pool.MaxOpen <= 0 {
		c.Pool.MaxOpen = 10
	}
	if c.Pool.MaxIdle <= 0 {
		c.Pool.MaxIdle = min(2, c.Pool.MaxOpen)
	}
	if c.Pool.MaxLifetime == 0 {
		c.Pool.MaxLifetime = time.Hour
	}
	if c.Pool.MaxIdleTime == 0 {
		c.Pool.MaxIdleTime = 30 * time.Minute
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if r := c.Retry; r != nil {
		if r.MaxRetries <= 0 {
			r.MaxRetries = 3
		}
		if r.BaseDelay <= 0 {
			r.BaseDelay = time.Second
		}
		if r.MaxDelay <= 0 {
			r.MaxDelay = 30 * time.Second
		}
		if r.Backoff < 1 {
			r.Backoff = 2
		}
	}
}

// Validate reports the first missing or malformed setting.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("driver is required")
	}
	if c.Driver == "sqlite" || c.Driver == "sqlite3" {
		if c.Path == "" {
			return fmt.Errorf("path is required for %s", c.Driver)
		}
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Pool.MaxIdle > c.Pool.MaxOpen {
		return fmt.Errorf("pool max_idle (%d) exceeds max_open (%d)", c.Pool.MaxIdle, c.Pool.MaxOpen)
	}
	return nil
}

// Validate validates cluster configuration.
func (cc *ClusterConfig) Validate() error {
	if err := cc.Primary.Validate(); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	for i := range cc.Replicas {
		if err := cc.Replicas[i].Validate(); err != nil {
			return fmt.Errorf("replica %d: %w", i, err)
		}
	}
	switch cc.ReadStrategy {
	case "", ReadPrimary, ReadRandom, ReadRoundRobin:
		return nil
	}
	return fmt.Errorf("invalid read strategy: %s", cc.ReadStrategy)
}
