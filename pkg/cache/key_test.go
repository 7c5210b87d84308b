package cache_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/regkit/regkit/pkg/cache"
)

func TestKeyBuilder(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	eventID := uuid.New().String()
	keys := cache.ForTenant(tenantID)

	t.Run("entity key", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t,
			fmt.Sprintf("tenant:%s:events:%s", tenantID, eventID),
			keys.Entity("events", eventID))
	})

	t.Run("view key", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t,
			fmt.Sprintf("tenant:%s:events:upcoming", tenantID),
			keys.View("events", "upcoming"))
	})

	t.Run("stats key", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t,
			fmt.Sprintf("tenant:%s:events:%s:stats", tenantID, eventID),
			keys.Stats("events", eventID))
	})

	t.Run("resource prefix covers entity view and stats keys", func(t *testing.T) {
		t.Parallel()
		prefix := keys.ResourcePrefix("events")
		assert.True(t, strings.HasPrefix(keys.Entity("events", eventID), prefix))
		assert.True(t, strings.HasPrefix(keys.View("events", "list"), prefix))
		assert.True(t, strings.HasPrefix(keys.Stats("events", eventID), prefix))
	})

	t.Run("resource prefix is segment aligned", func(t *testing.T) {
		t.Parallel()
		// "events" must not cover a sibling resource that shares the
		// character prefix.
		prefix := keys.ResourcePrefix("events")
		assert.False(t, strings.HasPrefix(keys.View("eventsummary", "list"), prefix))
	})

	t.Run("tenant prefixes are disjoint", func(t *testing.T) {
		t.Parallel()
		other := cache.ForTenant(uuid.New())
		assert.False(t, strings.HasPrefix(other.Entity("events", eventID), keys.Prefix()))
	})

	t.Run("lookup keys live outside tenant namespaces", func(t *testing.T) {
		t.Parallel()
		key := cache.LookupKey("tenant-subdomain", "acme")
		assert.Equal(t, "lookup:tenant-subdomain:acme", key)
		assert.False(t, strings.HasPrefix(key, "tenant:"))
	})
}
