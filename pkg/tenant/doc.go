// Package tenant resolves which tenant issued a request and confines the
// rest of the system to that tenant.
//
// A Resolver extracts an identifier from request metadata (header or
// subdomain), a Provider loads the matching tenant, and Middleware ties the
// two together and stamps the tenant into the request context. The context
// is only a transport between HTTP boundary and handler: every core
// component below the handlers takes the tenant id as an explicit argument,
// which is what makes tenant isolation mechanically checkable.
//
//	resolver := tenant.NewCompositeResolver(
//		tenant.NewHeaderResolver(""),
//		tenant.NewSubdomainResolver(".events.example.com"),
//	)
//	provider := tenant.NewCachedProvider(store, c) // routing keys change rarely
//
//	r.Use(tenant.Middleware(resolver, provider,
//		tenant.WithSkipPaths("/health"),
//	))
//
// Resolution failures map to ErrTenantNotFound, ErrTenantInactive, and
// ErrInvalidIdentifier; the default error handler renders them as 404, 403,
// and 400 respectively.
package tenant
