package ownership_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/regkit/regkit/pkg/ownership"
)

type owned struct{ tenant uuid.UUID }

func (o *owned) OwnerTenant() uuid.UUID { return o.tenant }

func TestCheck(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()

	t.Run("same tenant passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ownership.Check(&owned{tenant: tenantID}, tenantID))
	})

	t.Run("cross tenant reads as not found", func(t *testing.T) {
		t.Parallel()
		err := ownership.Check(&owned{tenant: uuid.New()}, tenantID)
		assert.ErrorIs(t, err, ownership.ErrNotFound)
		assert.NotErrorIs(t, err, ownership.ErrForbidden)
	})

	t.Run("nil entity is not found", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, ownership.Check(nil, tenantID), ownership.ErrNotFound)
	})
}

func TestCheckWrite(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()

	t.Run("same tenant passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ownership.CheckWrite(&owned{tenant: tenantID}, tenantID))
	})

	t.Run("cross tenant write is forbidden", func(t *testing.T) {
		t.Parallel()
		err := ownership.CheckWrite(&owned{tenant: uuid.New()}, tenantID)
		assert.ErrorIs(t, err, ownership.ErrForbidden)
	})

	t.Run("nil entity is still not found", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, ownership.CheckWrite(nil, tenantID), ownership.ErrNotFound)
	})
}
