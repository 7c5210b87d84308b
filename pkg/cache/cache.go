package cache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Backend is the storage layer behind a Cache. Implementations must be safe
// for concurrent use. Get reports a miss with found=false and a nil error;
// errors indicate the backend itself failed.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// Producer performs the real fetch on a cache miss.
type Producer func(ctx context.Context) ([]byte, error)

type fill struct {
	done  chan struct{}
	value []byte
	err   error

	// invalidated is set by Remove/RemoveByPrefix while the fill is still in
	// flight. The fill's result then reflects pre-write state: it must not be
	// stored, and waiters refetch instead of consuming it. Written under
	// Cache.mu and final once done is closed.
	invalidated bool
}

// Cache is a read-through cache with single-flight fills. Concurrent callers
// of GetOrSet for the same missing key share one producer invocation: the
// first caller fills, the rest wait for its result. Backend failures never
// fail a read; the cache degrades to calling the producer directly.
type Cache struct {
	backend Backend
	log     *slog.Logger

	mu       sync.Mutex
	inflight map[string]*fill
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used to report swallowed backend errors.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Cache over the given backend.
func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend:  backend,
		log:      slog.New(slog.DiscardHandler),
		inflight: make(map[string]*fill),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrSet returns the cached value for key, or invokes producer, stores the
// result with the given ttl, and returns it. At most one producer runs per
// key per miss; callers arriving during an in-flight fill wait for and reuse
// its outcome, bounded by their own context. A producer failure is cached by
// nobody and propagates to every waiter.
//
// A fill invalidated by Remove or RemoveByPrefix while still in flight is
// discarded: waiters refetch instead of consuming its pre-invalidation
// result, and readers arriving after the invalidation can never join it.
func (c *Cache) GetOrSet(ctx context.Context, key string, ttl time.Duration, producer Producer) ([]byte, error) {
	for {
		c.mu.Lock()
		if f, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			select {
			case <-f.done:
				if f.invalidated {
					// The fill observed pre-write state; go again.
					continue
				}
				if f.err != nil {
					return nil, f.err
				}
				return f.value, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		f := &fill{done: make(chan struct{})}
		c.inflight[key] = f
		c.mu.Unlock()

		return c.fill(ctx, key, ttl, producer, f)
	}
}

// fill is executed by the single flight leader for key. It checks the backend
// under leadership so a fill that completed just before registration is
// observed instead of re-produced. The leader itself may return a value
// produced before a concurrent invalidation (its read began first); the
// value is only never stored in the backend and never handed to waiters.
func (c *Cache) fill(ctx context.Context, key string, ttl time.Duration, producer Producer, f *fill) (value []byte, err error) {
	defer func() {
		c.mu.Lock()
		f.value = value
		f.err = err
		close(f.done)
		// An invalidation deregisters the fill itself, and a successor fill
		// may already occupy the key; only remove our own registration.
		if cur, ok := c.inflight[key]; ok && cur == f {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}()

	cached, found, berr := c.backend.Get(ctx, key)
	if berr != nil {
		// Fail open: serve the producer result without storing it.
		c.log.WarnContext(ctx, "cache backend get failed, falling back to producer",
			slog.String("key", key), slog.Any("error", berr))
		return producer(ctx)
	}
	if found {
		return cached, nil
	}

	value, err = producer(ctx)
	if err != nil {
		return nil, err
	}

	if c.isInvalidated(f) {
		return value, nil
	}
	if serr := c.backend.Set(ctx, key, value, ttl); serr != nil {
		c.log.WarnContext(ctx, "cache backend set failed, entry not stored",
			slog.String("key", key), slog.Any("error", serr))
	} else if c.isInvalidated(f) {
		// The invalidation ran between the check above and the Set, so its
		// backend delete may have landed first and our entry would outlive
		// it. Delete again; at worst this evicts a successor's fresh entry,
		// which costs one refill but can never serve stale data.
		if derr := c.backend.Delete(ctx, key); derr != nil {
			c.log.WarnContext(ctx, "cache backend delete after invalidated fill failed",
				slog.String("key", key), slog.Any("error", derr))
		}
	}
	return value, nil
}

func (c *Cache) isInvalidated(f *fill) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return f.invalidated
}

// Remove deletes exactly one entry and discards any in-flight fill for the
// key, so a fill that observed pre-write state is neither stored nor joined
// by later readers. Removing an absent key is a no-op. Backend errors are
// logged and swallowed: invalidation must never roll back the write that
// triggered it.
func (c *Cache) Remove(ctx context.Context, key string) {
	c.mu.Lock()
	if f, ok := c.inflight[key]; ok {
		f.invalidated = true
		delete(c.inflight, key)
	}
	c.mu.Unlock()

	if err := c.backend.Delete(ctx, key); err != nil {
		c.log.ErrorContext(ctx, "cache invalidation failed",
			slog.String("key", key), slog.Any("error", err))
	}
}

// RemoveByPrefix deletes every entry whose key starts with prefix, including
// discarding in-flight fills under it. Callers must pass prefixes produced
// by KeyBuilder so deletes stay confined to the calling tenant's namespace.
func (c *Cache) RemoveByPrefix(ctx context.Context, prefix string) {
	c.mu.Lock()
	for key, f := range c.inflight {
		if strings.HasPrefix(key, prefix) {
			f.invalidated = true
			delete(c.inflight, key)
		}
	}
	c.mu.Unlock()

	if err := c.backend.DeletePrefix(ctx, prefix); err != nil {
		c.log.ErrorContext(ctx, "cache prefix invalidation failed",
			slog.String("prefix", prefix), slog.Any("error", err))
	}
}

// Close releases the underlying backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}
