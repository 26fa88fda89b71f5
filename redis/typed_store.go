package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/kbukum/jobgraph/errors"
)

// TypedStore provides typed JSON-serialized get/set operations on Redis.
type TypedStore[C any] struct {
	client    *Client
	keyPrefix string
}

// NewTypedStore creates a TypedStore backed by the given Redis client.
// All keys are prefixed with keyPrefix followed by a colon separator.
func NewTypedStore[C any](client *Client, keyPrefix string) *TypedStore[C] {
	return &TypedStore[C]{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *TypedStore[C]) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load deserializes JSON from Redis. Returns (nil, nil) if key doesn't exist.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, apperrors.StorageError("redis load", err).WithDetail("key", key)
	}

	var val C
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, apperrors.StorageError("redis decode", err).WithDetail("key", key)
	}
	return &val, nil
}

// Save serializes to JSON and stores with TTL. TTL of 0 means no expiration.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return apperrors.StorageError("redis encode", err).WithDetail("key", key)
	}
	if err := s.client.Set(ctx, s.fullKey(key), string(data), ttl); err != nil {
		return apperrors.StorageError("redis save", err).WithDetail("key", key)
	}
	return nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)); err != nil {
		return apperrors.StorageError("redis delete", err).WithDetail("key", key)
	}
	return nil
}

// Keys returns the unprefixed keys held by this store.
func (s *TypedStore[C]) Keys(ctx context.Context) ([]string, error) {
	pattern := "*"
	if s.keyPrefix != "" {
		pattern = s.keyPrefix + ":*"
	}
	keys, err := s.client.Scan(ctx, pattern)
	if err != nil {
		return nil, apperrors.StorageError("redis scan", err)
	}
	if s.keyPrefix == "" {
		return keys, nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, s.keyPrefix+":"))
	}
	return out, nil
}
