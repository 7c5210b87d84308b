package keylock

import (
	"context"
	"errors"
	"sync"
)

// ErrAcquireTimeout is returned when the context expires before the lock
// for the requested key becomes available.
var ErrAcquireTimeout = errors.New("keylock: acquire timed out")

type entry struct {
	sem  chan struct{} // capacity 1, holding the token means holding the lock
	refs int
}

// KeyLock provides a mutex per key. Locks for distinct keys are fully
// independent, and entries for idle keys are released so the lock table
// does not grow with the key space.
type KeyLock[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

// New creates an empty KeyLock.
func New[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{entries: make(map[K]*entry)}
}

// Acquire blocks until the lock for key is held or ctx is done. On success
// it returns a release function that must be called exactly once. When the
// context expires while waiting, ErrAcquireTimeout is returned joined with
// the context error.
func (l *KeyLock[K]) Acquire(ctx context.Context, key K) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			l.put(key, e)
		}, nil
	case <-ctx.Done():
		l.put(key, e)
		return nil, errors.Join(ErrAcquireTimeout, ctx.Err())
	}
}

// put drops one reference to the entry and removes it once unused.
func (l *KeyLock[K]) put(key K, e *entry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()
}
