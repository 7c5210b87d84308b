package cache

import (
	"strings"

	"github.com/google/uuid"
)

// Separator joins key segments. Prefixes produced by this package always end
// with it, so prefix invalidation is segment-aligned and "events" can never
// match keys under "eventsummary".
const Separator = ":"

const tenantNamespace = "tenant"

// KeyBuilder constructs cache keys scoped to a single tenant. All keys share
// the "tenant:{id}:" prefix, which is what makes prefix invalidation safe
// across tenants: deleting under one tenant's prefix cannot touch another's.
type KeyBuilder struct {
	tenant uuid.UUID
}

// ForTenant returns a KeyBuilder for the given tenant.
func ForTenant(tenantID uuid.UUID) KeyBuilder {
	return KeyBuilder{tenant: tenantID}
}

// Prefix returns the prefix covering every key of this tenant.
func (b KeyBuilder) Prefix() string {
	return join(tenantNamespace, b.tenant.String()) + Separator
}

// Entity returns the key for a single entity, e.g. "tenant:{id}:events:{eid}".
func (b KeyBuilder) Entity(resource, id string) string {
	return join(tenantNamespace, b.tenant.String(), resource, id)
}

// View returns the key for a derived collection view,
// e.g. "tenant:{id}:events:upcoming".
func (b KeyBuilder) View(resource, view string) string {
	return join(tenantNamespace, b.tenant.String(), resource, view)
}

// Stats returns the key for a per-entity aggregate,
// e.g. "tenant:{id}:events:{eid}:stats".
func (b KeyBuilder) Stats(resource, id string) string {
	return join(tenantNamespace, b.tenant.String(), resource, id, "stats")
}

// ResourcePrefix returns the prefix covering the entity, view, and stats keys
// of one resource kind, e.g. "tenant:{id}:events:".
func (b KeyBuilder) ResourcePrefix(resource string) string {
	return join(tenantNamespace, b.tenant.String(), resource) + Separator
}

// LookupKey builds a key for pre-resolution reference data that is not yet
// scoped to a tenant id, such as the routing-key to tenant mapping consumed
// by the tenant resolver. These keys live under a reserved "lookup:"
// namespace that no tenant prefix can collide with.
func LookupKey(kind, identifier string) string {
	return join("lookup", kind, identifier)
}

func join(segments ...string) string {
	return strings.Join(segments, Separator)
}
