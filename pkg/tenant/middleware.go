package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Middleware resolves the tenant for every request and stamps it into the
// request context. Requests without an identifier pass through unstamped;
// protect tenant-only routes with RequireTenant. Wrap the provider in a
// CachedProvider to avoid a store lookup per request.
func Middleware(resolve Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		errorHandler:  defaultErrorHandler,
		requireActive: true,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier, err := resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if identifier == "" {
				next.ServeHTTP(w, r)
				return
			}

			t, err := provider.GetByIdentifier(r.Context(), identifier)
			if err != nil {
				if !errors.Is(err, ErrTenantNotFound) {
					cfg.logger.ErrorContext(r.Context(), "tenant lookup failed",
						slog.String("identifier", identifier), slog.Any("error", err))
				}
				cfg.errorHandler(w, r, err)
				return
			}

			if cfg.requireActive && !t.Active {
				cfg.errorHandler(w, r, ErrTenantInactive)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// RequireTenant rejects requests whose context carries no tenant.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t, ok := FromContext(r.Context()); !ok || t == nil {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
