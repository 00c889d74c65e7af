package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store is a JSON cache-aside layer over Redis. A Store with a nil client
// always calls through to the loader.
type Store struct {
	rdb  *redis.Client
	name string
}

// NewStore returns a Store labelled name in metrics.
func NewStore(rdb *redis.Client, name string) *Store {
	return &Store{rdb: rdb, name: name}
}

// Aside loads key into dest, falling back to load on a miss and caching its
// result for ttl. Redis failures are logged and never fail the read.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() (any, error)) error {
	if s == nil || s.rdb == nil {
		return fill(dest, load)
	}

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(s.name, "hit").Inc()
			return nil
		}
		s.rdb.Del(ctx, key)
	case errors.Is(err, redis.Nil):
	default:
		observability.CacheLookups.WithLabelValues(s.name, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return fill(dest, load)
	}
	observability.CacheLookups.WithLabelValues(s.name, "miss").Inc()

	value, err := load()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return json.Unmarshal(payload, dest)
}

// Invalidate drops key.
func (s *Store) Invalidate(ctx context.Context, key string) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed", "key", key, "error", err)
	}
}

func fill(dest any, load func() (any, error)) error {
	value, err := load()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}
