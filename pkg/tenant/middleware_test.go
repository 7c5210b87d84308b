package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regkit/regkit/pkg/tenant"
)

type mapProvider struct {
	tenants map[string]*tenant.Tenant
}

func (p *mapProvider) GetByIdentifier(_ context.Context, identifier string) (*tenant.Tenant, error) {
	t, ok := p.tenants[identifier]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	acme := testTenant("acme", true)
	dormant := testTenant("dormant", false)
	provider := &mapProvider{tenants: map[string]*tenant.Tenant{
		"acme":    acme,
		"dormant": dormant,
	}}

	newHandler := func(opts ...tenant.Option) (http.Handler, *[]*tenant.Tenant) {
		var seen []*tenant.Tenant
		h := tenant.Middleware(tenant.NewHeaderResolver(""), provider, opts...)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ := tenant.FromContext(r.Context())
				seen = append(seen, got)
				w.WriteHeader(http.StatusOK)
			}))
		return h, &seen
	}

	t.Run("stamps resolved tenant into context", func(t *testing.T) {
		t.Parallel()
		h, seen := newHandler()

		req := httptest.NewRequest("GET", "http://api.events.com/", nil)
		req.Header.Set(tenant.DefaultHeaderName, "acme")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, *seen, 1)
		assert.Equal(t, acme, (*seen)[0])
	})

	t.Run("unknown tenant is 404", func(t *testing.T) {
		t.Parallel()
		h, seen := newHandler()

		req := httptest.NewRequest("GET", "http://api.events.com/", nil)
		req.Header.Set(tenant.DefaultHeaderName, "ghost")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, *seen)
	})

	t.Run("inactive tenant is 403", func(t *testing.T) {
		t.Parallel()
		h, seen := newHandler()

		req := httptest.NewRequest("GET", "http://api.events.com/", nil)
		req.Header.Set(tenant.DefaultHeaderName, "dormant")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, *seen)
	})

	t.Run("inactive tenant passes when active not required", func(t *testing.T) {
		t.Parallel()
		h, seen := newHandler(tenant.WithRequireActive(false))

		req := httptest.NewRequest("GET", "http://api.events.com/", nil)
		req.Header.Set(tenant.DefaultHeaderName, "dormant")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, *seen, 1)
		assert.Equal(t, dormant, (*seen)[0])
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()
		h, seen := newHandler(tenant.WithSkipPaths("/health"))

		req := httptest.NewRequest("GET", "http://api.events.com/health", nil)
		req.Header.Set(tenant.DefaultHeaderName, "ghost")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, *seen, 1)
		assert.Nil(t, (*seen)[0])
	})

	t.Run("no identifier continues unstamped", func(t *testing.T) {
		t.Parallel()
		h, seen := newHandler()

		req := httptest.NewRequest("GET", "http://api.events.com/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, *seen, 1)
		assert.Nil(t, (*seen)[0])
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	h := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("passes with tenant", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "http://api.events.com/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), testTenant("acme", true)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects without tenant", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "http://api.events.com/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
