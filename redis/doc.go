// Package redis provides a go-redis client wrapper with structured
// logging, pooled connections and component lifecycle support.
//
// TypedStore layers JSON encoding over a key prefix and is what the
// persistence package uses to keep execution graphs in Redis:
//
//	store := redis.NewTypedStore[dag.Structure](client, "pipeline:graph")
//	err := store.Save(ctx, jobID, structure, 24*time.Hour)
//
// A missing key loads as (nil, nil).
package redis
