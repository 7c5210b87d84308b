package tenant_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regkit/regkit/pkg/tenant"
)

func TestHeaderResolver(t *testing.T) {
	t.Parallel()

	t.Run("reads configured header", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewHeaderResolver("X-Org")
		req := httptest.NewRequest("GET", "http://api.example.com/", nil)
		req.Header.Set("X-Org", "acme")

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("defaults to X-Tenant-ID", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewHeaderResolver("")
		req := httptest.NewRequest("GET", "http://api.example.com/", nil)
		req.Header.Set(tenant.DefaultHeaderName, "acme")

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("missing header yields empty identifier", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewHeaderResolver("")
		req := httptest.NewRequest("GET", "http://api.example.com/", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("rejects malformed identifiers", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewHeaderResolver("")
		req := httptest.NewRequest("GET", "http://api.example.com/", nil)
		req.Header.Set(tenant.DefaultHeaderName, "../../etc/passwd")

		_, err := resolve(req)
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})
}

func TestSubdomainResolver(t *testing.T) {
	t.Parallel()

	t.Run("extracts subdomain", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewSubdomainResolver("")
		req := httptest.NewRequest("GET", "http://acme.events.com/", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("strips configured suffix", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewSubdomainResolver(".events.com")
		req := httptest.NewRequest("GET", "http://acme.events.com/", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("ignores port", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewSubdomainResolver("")
		req := httptest.NewRequest("GET", "http://acme.events.com:8080/", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("base domain yields no identifier", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewSubdomainResolver("")
		req := httptest.NewRequest("GET", "http://events.com/", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("skips www", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewSubdomainResolver("")
		req := httptest.NewRequest("GET", "http://www.acme.events.com/", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})
}

func TestCompositeResolver(t *testing.T) {
	t.Parallel()

	t.Run("first non-empty identifier wins", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewCompositeResolver(
			tenant.NewHeaderResolver(""),
			tenant.NewSubdomainResolver(""),
		)
		req := httptest.NewRequest("GET", "http://acme.events.com/", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id, "header is empty, subdomain should win")

		req.Header.Set(tenant.DefaultHeaderName, "other")
		id, err = resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "other", id, "header takes precedence")
	})

	t.Run("no resolver matches", func(t *testing.T) {
		t.Parallel()
		resolve := tenant.NewCompositeResolver(tenant.NewHeaderResolver(""))
		req := httptest.NewRequest("GET", "http://events.com/", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Empty(t, id)
	})
}
