package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend is a process-local Backend backed by a map with TTL
// expiration. A janitor goroutine evicts expired entries; it stops when the
// constructor context is cancelled or Close is called.
type MemoryBackend struct {
	mu     sync.RWMutex
	items  map[string]memoryEntry
	stop   chan struct{}
	closed bool
}

const janitorInterval = time.Minute

// NewMemoryBackend creates a MemoryBackend whose janitor runs until ctx is
// cancelled.
func NewMemoryBackend(ctx context.Context) *MemoryBackend {
	b := &MemoryBackend{
		items: make(map[string]memoryEntry),
		stop:  make(chan struct{}),
	}
	go b.janitor(ctx)
	return b
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	e, ok := b.items[key]
	b.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		b.mu.Lock()
		// Re-check under the write lock; a Set may have refreshed the entry.
		if cur, ok := b.items[key]; ok && time.Now().After(cur.expiresAt) {
			delete(b.items, key)
		}
		b.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.items[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.items, key)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) DeletePrefix(_ context.Context, prefix string) error {
	b.mu.Lock()
	for key := range b.items {
		if strings.HasPrefix(key, prefix) {
			delete(b.items, key)
		}
	}
	b.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired or not.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.stop)
	return nil
}

func (b *MemoryBackend) janitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.removeExpired()
		case <-ctx.Done():
			return
		case <-b.stop:
			return
		}
	}
}

func (b *MemoryBackend) removeExpired() {
	now := time.Now()
	b.mu.Lock()
	for key, e := range b.items {
		if now.After(e.expiresAt) {
			delete(b.items, key)
		}
	}
	b.mu.Unlock()
}
