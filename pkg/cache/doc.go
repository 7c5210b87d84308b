// Package cache provides a tenant-scoped read-through cache with TTL
// expiration, single-flight fills, and prefix-based bulk invalidation.
//
// Every key is built through KeyBuilder and carries a "tenant:{id}:" prefix,
// which partitions the keyspace per tenant: a prefix invalidation issued for
// one tenant can never delete another tenant's entries, and a request stamped
// with one tenant id never reads a key built for a different one.
//
// # Read path
//
//	keys := cache.ForTenant(tenantID)
//	events := cache.NewTyped[[]Event](c)
//
//	list, err := events.GetOrSet(ctx, keys.View("events", "list"), 5*time.Minute,
//		func(ctx context.Context) ([]Event, error) {
//			return repo.ListByTenant(ctx, tenantID)
//		})
//
// GetOrSet guarantees at most one producer invocation per key per miss.
// Concurrent callers for the same missing key block on the in-flight fill and
// share its result, or its error; failed fills cache nothing. Waiting is
// bounded by each caller's own context.
//
// # Invalidation
//
// After a mutation commits, callers delete the entity key, the resource
// prefix, and the stats key, strictly in that order and strictly after the
// write:
//
//	c.Remove(ctx, keys.Entity("events", id))
//	c.RemoveByPrefix(ctx, keys.ResourcePrefix("events"))
//	c.Remove(ctx, keys.Stats("events", id))
//
// Invalidation also covers fills still in flight: a matching fill is
// discarded, its result is never stored, and waiters refetch, so a reader
// arriving after the invalidation always observes post-write state.
//
// # Failure semantics
//
// The cache fails open. A broken backend degrades reads to direct producer
// calls, and invalidation errors are logged rather than surfaced, so cache
// availability never decides the outcome of a business operation.
//
// Two backends ship with the package: MemoryBackend for a single process and
// RedisBackend for sharing entries between instances.
package cache
