// Package tenant manages tenant records: operator-facing CRUD plus the
// Provider the resolution middleware consumes. Tenants are read-mostly;
// routing keys are globally unique among active tenants.
package tenant

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	tenantpkg "github.com/regkit/regkit/pkg/tenant"
)

var (
	// ErrSubdomainTaken is returned when the routing key is already used by
	// an active tenant.
	ErrSubdomainTaken = errors.New("subdomain already taken")

	// ErrInvalidSubdomain is returned for routing keys that are not
	// DNS-safe labels.
	ErrInvalidSubdomain = errors.New("invalid subdomain")
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// Repository persists tenants. Implementations return
// tenantpkg.ErrTenantNotFound for absent rows.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tenantpkg.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*tenantpkg.Tenant, error)
	Create(ctx context.Context, t *tenantpkg.Tenant) error
	Update(ctx context.Context, t *tenantpkg.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service wraps a Repository with validation and implements
// tenantpkg.Provider for the resolution middleware.
type Service struct {
	repo Repository
}

// NewService creates a tenant service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput holds the operator-supplied fields for a new tenant.
type CreateInput struct {
	Name      string
	Subdomain string
}

// Create registers a new active tenant. The routing key must be a DNS-safe
// label and unused by any active tenant.
func (s *Service) Create(ctx context.Context, in CreateInput) (*tenantpkg.Tenant, error) {
	if !subdomainPattern.MatchString(in.Subdomain) {
		return nil, ErrInvalidSubdomain
	}

	if _, err := s.repo.GetBySubdomain(ctx, in.Subdomain); err == nil {
		return nil, ErrSubdomainTaken
	} else if !errors.Is(err, tenantpkg.ErrTenantNotFound) {
		return nil, err
	}

	t := &tenantpkg.Tenant{
		ID:        uuid.New(),
		Name:      in.Name,
		Subdomain: in.Subdomain,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get loads one tenant by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*tenantpkg.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// SetActive flips the active flag. Deactivating frees the routing key for
// reuse by new tenants.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*tenantpkg.Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Active = active
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a tenant record permanently. Prefer SetActive(false) for
// routine offboarding; deletion is for operator cleanup only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// GetByIdentifier implements tenantpkg.Provider. A UUID identifier is
// looked up by id, anything else by routing key.
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.GetBySubdomain(ctx, identifier)
}
