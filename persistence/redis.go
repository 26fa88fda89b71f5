package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/redis"
)

// RedisStore keeps each graph as a JSON string under <prefix>:<jobId>.
type RedisStore struct {
	store *redis.TypedStore[dag.Structure]
	ttl   time.Duration
}

// NewRedisStore creates a store on client. An empty prefix uses
// DefaultKeyPrefix; a zero ttl keeps graphs until deleted.
func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{
		store: redis.NewTypedStore[dag.Structure](client, keyPrefix),
		ttl:   ttl,
	}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Save(ctx context.Context, jobID string, g *dag.Structure) error {
	if err := checkJobID(jobID); err != nil {
		return err
	}
	return s.store.Save(ctx, jobID, g, s.ttl)
}

func (s *RedisStore) Load(ctx context.Context, jobID string) (*dag.Structure, error) {
	return s.store.Load(ctx, jobID)
}

func (s *RedisStore) Delete(ctx context.Context, jobID string) error {
	return s.store.Delete(ctx, jobID)
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
