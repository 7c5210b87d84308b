package tenant

import (
	"context"
	"time"

	"github.com/regkit/regkit/pkg/cache"
)

// DefaultLookupTTL is how long resolved routing-key lookups stay cached.
// Routing keys change rarely, so an hour keeps the store mostly idle.
const DefaultLookupTTL = time.Hour

// CachedProvider wraps a Provider with a read-through cache on the
// identifier-to-tenant lookup. Lookups are keyed under the reserved
// "lookup:" namespace, and the cache's single-flight fill means a burst of
// requests for one cold identifier hits the store exactly once. Failed
// lookups (including not found) are never cached.
type CachedProvider struct {
	inner Provider
	cache cache.Typed[*Tenant]
	ttl   time.Duration
}

// CachedProviderOption configures a CachedProvider.
type CachedProviderOption func(*CachedProvider)

// WithLookupTTL overrides DefaultLookupTTL.
func WithLookupTTL(ttl time.Duration) CachedProviderOption {
	return func(p *CachedProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// NewCachedProvider wraps inner with lookup caching backed by c.
func NewCachedProvider(inner Provider, c *cache.Cache, opts ...CachedProviderOption) *CachedProvider {
	p := &CachedProvider{
		inner: inner,
		cache: cache.NewTyped[*Tenant](c),
		ttl:   DefaultLookupTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetByIdentifier implements Provider.
func (p *CachedProvider) GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	return p.cache.GetOrSet(ctx, cache.LookupKey("tenant", identifier), p.ttl,
		func(ctx context.Context) (*Tenant, error) {
			return p.inner.GetByIdentifier(ctx, identifier)
		})
}

// Invalidate drops the cached lookup for one identifier; call it after a
// tenant's routing key or active flag changes.
func (p *CachedProvider) Invalidate(ctx context.Context, identifier string) {
	p.cache.Remove(ctx, cache.LookupKey("tenant", identifier))
}
