package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/database"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/redis"
)

// Store persists graph structures by job id. Implementations are safe for
// concurrent use.
type Store interface {
	// Save replaces the graph stored for jobID.
	Save(ctx context.Context, jobID string, s *dag.Structure) error
	// Load returns the graph stored for jobID, or (nil, nil) if there is none.
	Load(ctx context.Context, jobID string) (*dag.Structure, error)
	// Delete removes the graph for jobID. Deleting a missing job is not an error.
	Delete(ctx context.Context, jobID string) error
	// List returns the stored job ids in ascending order.
	List(ctx context.Context) ([]string, error)
}

// Backend types.
const (
	TypeMemory   = "memory"
	TypeRedis    = "redis"
	TypeDatabase = "database"
)

// DefaultKeyPrefix namespaces graph keys in Redis.
const DefaultKeyPrefix = "pipeline:graph"

// Config selects and configures the graph store backend.
type Config struct {
	// Type is one of memory, redis or database.
	Type string `mapstructure:"type"`

	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `mapstructure:"key_prefix"`

	// TTL expires stored graphs in the memory and Redis backends (e.g. "24h").
	// Empty keeps them until deleted.
	TTL string `mapstructure:"ttl"`

	Redis    redis.Config    `mapstructure:"redis"`
	Database database.Config `mapstructure:"database"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = TypeMemory
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	switch c.Type {
	case TypeRedis:
		c.Redis.Enabled = true
		c.Redis.ApplyDefaults()
	case TypeDatabase:
		c.Database.Enabled = true
		if c.Database.DSN == "" {
			c.Database.DSN = "jobgraph.db"
		}
		c.Database.ApplyDefaults()
	}
}

// Validate checks the selected backend's settings.
func (c *Config) Validate() error {
	if c.TTL != "" {
		if _, err := time.ParseDuration(c.TTL); err != nil {
			return fmt.Errorf("invalid ttl %q: %w", c.TTL, err)
		}
	}
	switch c.Type {
	case TypeMemory:
		return nil
	case TypeRedis:
		return c.Redis.Validate()
	case TypeDatabase:
		return c.Database.Validate()
	default:
		return fmt.Errorf("unknown persistence type %q", c.Type)
	}
}

func (c *Config) ttl() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

func checkJobID(jobID string) error {
	if jobID == "" {
		return apperrors.InvalidInput("jobId", "job id is required")
	}
	return nil
}

// SaveGraph stores the current state of m under jobID.
func SaveGraph(ctx context.Context, store Store, jobID string, m *dag.NodesMap) error {
	if m == nil {
		return apperrors.InvalidInput("graph", "graph is required")
	}
	return store.Save(ctx, jobID, m.Graph())
}

// LoadGraph restores the graph stored under jobID. A job with no stored
// graph yields a NOT_FOUND error.
func LoadGraph(ctx context.Context, store Store, jobID string, opts ...dag.Option) (*dag.NodesMap, error) {
	s, err := store.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperrors.NotFound("graph", jobID)
	}
	return dag.FromGraph(s, opts...), nil
}
