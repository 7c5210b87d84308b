package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Typed is a convenience wrapper that stores values of one type as JSON.
type Typed[T any] struct {
	cache *Cache
}

// NewTyped wraps a Cache for values of type T.
func NewTyped[T any](c *Cache) Typed[T] {
	return Typed[T]{cache: c}
}

// GetOrSet is the typed counterpart of Cache.GetOrSet. A stored entry that no
// longer unmarshals into T (for example after a schema change) is treated as
// a miss: the entry is dropped and the producer result is served.
func (t Typed[T]) GetOrSet(ctx context.Context, key string, ttl time.Duration, produce func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := t.cache.GetOrSet(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := produce(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.cache.log.WarnContext(ctx, "cache entry undecodable, dropping",
			slog.String("key", key), slog.Any("error", err))
		t.cache.Remove(ctx, key)
		return produce(ctx)
	}
	return v, nil
}

// Remove deletes one entry.
func (t Typed[T]) Remove(ctx context.Context, key string) {
	t.cache.Remove(ctx, key)
}

// RemoveByPrefix deletes every entry under prefix.
func (t Typed[T]) RemoveByPrefix(ctx context.Context, prefix string) {
	t.cache.RemoveByPrefix(ctx, prefix)
}
