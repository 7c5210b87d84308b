package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores cache entries in Redis, letting multiple application
// instances share one tenant-scoped cache. Prefix deletion walks the keyspace
// with SCAN so it stays cursor-based and never blocks the server the way
// KEYS would.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend wraps an already-connected client.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Join(ErrBackendUnavailable, err)
	}
	return value, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := b.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Join(ErrBackendUnavailable, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return errors.Join(ErrBackendUnavailable, err)
	}
	return nil
}

const deleteBatchSize = 100

func (b *RedisBackend) DeletePrefix(ctx context.Context, prefix string) error {
	iter := b.client.Scan(ctx, 0, prefix+"*", 0).Iterator()

	batch := make([]string, 0, deleteBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := b.client.Del(ctx, batch...).Err(); err != nil {
			return errors.Join(ErrBackendUnavailable, err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == deleteBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Join(ErrBackendUnavailable, err)
	}
	return flush()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
