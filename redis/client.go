package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
)

type goredisOptions = goredis.Options

// Client wraps a go-redis client with structured logging.
type Client struct {
	rdb    *goredis.Client
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// New creates a new Redis client with the given configuration and logger.
// No connection is made until the first command; use Ping to verify.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.InvalidInput("redis", err.Error())
	}
	if !cfg.Enabled {
		return nil, apperrors.InvalidInput("redis", "redis is disabled")
	}
	if log == nil {
		log = logger.Nop()
	}

	rdb := goredis.NewClient(cfg.options())

	log.Debug("Redis client created", logger.Fields(
		"addr", cfg.Addr,
		"db", cfg.DB,
		"pool_size", cfg.PoolSize,
	))

	return &Client{rdb: rdb, log: log, cfg: cfg}, nil
}

// IsNil reports whether err is the go-redis "key does not exist" reply.
func IsNil(err error) bool {
	return errors.Is(err, goredis.Nil)
}

// Ping verifies the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	pong, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return apperrors.ConnectionFailed("redis", err)
	}
	if pong != "PONG" {
		return apperrors.ConnectionFailed("redis", fmt.Errorf("unexpected ping response: %s", pong))
	}
	return nil
}

// Get retrieves a value by key. A missing key returns an error for which
// IsNil is true.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Set stores a value with a key and expiration. Zero expiration keeps the
// key forever.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Exists returns how many of the given keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Exists(ctx, keys...).Result()
}

// Scan returns every key matching pattern, walking the keyspace with SCAN.
func (c *Client) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close closes the Redis connection. Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.log.Debug("Closing Redis connection")
	c.closed = true
	return c.rdb.Close()
}

// Unwrap returns the underlying go-redis client for advanced operations.
func (c *Client) Unwrap() *goredis.Client {
	return c.rdb
}
