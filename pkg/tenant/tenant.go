package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is the organizational owner of a partition of data. Every event,
// registration, and user traces ownership to exactly one tenant.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"` // unique routing key among active tenants
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads tenant information from a data source. The identifier may
// be a tenant id or the routing key (subdomain), depending on how the
// request was resolved. Implementations return ErrTenantNotFound when no
// tenant matches.
type Provider interface {
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, identifier string) (*Tenant, error)

func (f ProviderFunc) GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	return f(ctx, identifier)
}
