package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regkit/regkit/pkg/tenant"
)

func testTenant(subdomain string, active bool) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Name:      subdomain,
		Subdomain: subdomain,
		Active:    active,
		CreatedAt: time.Now(),
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		tn := testTenant("acme", true)
		ctx := tenant.WithTenant(context.Background(), tn)

		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tn, got)

		id, ok := tenant.IDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tn.ID, id)
	})

	t.Run("absent tenant", func(t *testing.T) {
		t.Parallel()
		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)

		_, ok = tenant.IDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("must panics without tenant", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			tenant.MustFromContext(context.Background())
		})
	})

	t.Run("logger extractor", func(t *testing.T) {
		t.Parallel()
		tn := testTenant("acme", true)
		extract := tenant.LoggerExtractor()

		attr, ok := extract(tenant.WithTenant(context.Background(), tn))
		require.True(t, ok)
		assert.Equal(t, "tenant_id", attr.Key)
		assert.Equal(t, tn.ID.String(), attr.Value.String())

		_, ok = extract(context.Background())
		assert.False(t, ok)
	})
}
