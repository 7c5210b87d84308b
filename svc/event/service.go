package event

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/regkit/regkit/pkg/cache"
	"github.com/regkit/regkit/pkg/ownership"
)

// ErrValidation is returned for structurally invalid input.
var ErrValidation = errors.New("invalid event input")

// Resource is the cache resource segment for events. The registration service
// uses it to invalidate event aggregates it changes.
const Resource = "events"

const (
	viewList     = "list"
	viewUpcoming = "upcoming"
	viewPending  = "pending"

	entityTTL = 10 * time.Minute
	viewTTL   = 5 * time.Minute
	statsTTL  = time.Minute
)

// Repository persists events. Find loads by primary key without a tenant
// filter; the service applies the ownership guard on top. Implementations
// return ownership.ErrNotFound for absent rows.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (*Event, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Event, error)
	ListUpcoming(ctx context.Context, tenantID uuid.UUID, after time.Time) ([]Event, error)
	ListPending(ctx context.Context, tenantID uuid.UUID) ([]Event, error)
	Create(ctx context.Context, e *Event) error
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, eventID uuid.UUID) (*Stats, error)
}

// Service exposes event operations. Every read is tenant-scoped and served
// through the cache; every mutation invalidates after the store commit, never
// before.
type Service struct {
	repo     Repository
	cache    *cache.Cache
	entities cache.Typed[*Event]
	views    cache.Typed[[]Event]
	stats    cache.Typed[*Stats]
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an event service over the given repository and cache.
func NewService(repo Repository, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		cache:    c,
		entities: cache.NewTyped[*Event](c),
		views:    cache.NewTyped[[]Event](c),
		stats:    cache.NewTyped[*Stats](c),
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads one event for the given tenant. An event owned by another tenant
// is indistinguishable from a missing one: both return ErrNotFound.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Event, error) {
	key := cache.ForTenant(tenantID).Entity(Resource, id.String())
	ev, err := s.entities.GetOrSet(ctx, key, entityTTL, func(ctx context.Context) (*Event, error) {
		ev, err := s.repo.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := ownership.Check(ev, tenantID); err != nil {
			return nil, err
		}
		return ev, nil
	})
	if err != nil {
		return nil, err
	}
	// Re-checked on the way out so a stale entry cached under the wrong key
	// can never cross a tenant boundary.
	if err := ownership.Check(ev, tenantID); err != nil {
		return nil, err
	}
	return ev, nil
}

// List returns all events of the tenant, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Event, error) {
	key := cache.ForTenant(tenantID).View(Resource, viewList)
	return s.views.GetOrSet(ctx, key, viewTTL, func(ctx context.Context) ([]Event, error) {
		return s.repo.ListByTenant(ctx, tenantID)
	})
}

// ListUpcoming returns the tenant's approved events that start in the future.
func (s *Service) ListUpcoming(ctx context.Context, tenantID uuid.UUID) ([]Event, error) {
	key := cache.ForTenant(tenantID).View(Resource, viewUpcoming)
	return s.views.GetOrSet(ctx, key, viewTTL, func(ctx context.Context) ([]Event, error) {
		return s.repo.ListUpcoming(ctx, tenantID, s.now())
	})
}

// ListPending returns the tenant's events awaiting moderation.
func (s *Service) ListPending(ctx context.Context, tenantID uuid.UUID) ([]Event, error) {
	key := cache.ForTenant(tenantID).View(Resource, viewPending)
	return s.views.GetOrSet(ctx, key, viewTTL, func(ctx context.Context) ([]Event, error) {
		return s.repo.ListPending(ctx, tenantID)
	})
}

// GetStats returns the registration aggregates for one event. Ownership is
// established through Get before the aggregate is served.
func (s *Service) GetStats(ctx context.Context, tenantID, id uuid.UUID) (*Stats, error) {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	key := cache.ForTenant(tenantID).Stats(Resource, id.String())
	return s.stats.GetOrSet(ctx, key, statsTTL, func(ctx context.Context) (*Stats, error) {
		return s.repo.Stats(ctx, id)
	})
}

// CreateInput holds the organizer-supplied fields for a new event.
type CreateInput struct {
	Title        string
	Description  string
	Location     string
	StartsAt     time.Time
	MaxAttendees *int32
}

// Create stores a new pending event for the tenant.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in CreateInput) (*Event, error) {
	if in.Title == "" {
		return nil, errors.Join(ErrValidation, errors.New("title is required"))
	}
	if in.MaxAttendees != nil && *in.MaxAttendees < 1 {
		return nil, errors.Join(ErrValidation, errors.New("max attendees must be positive"))
	}

	now := s.now().UTC()
	ev := &Event{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		StartsAt:     in.StartsAt,
		MaxAttendees: in.MaxAttendees,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, ev); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, ev.ID)
	return ev, nil
}

// UpdateInput carries optional field changes; nil fields are left untouched.
type UpdateInput struct {
	Title        *string
	Description  *string
	Location     *string
	StartsAt     *time.Time
	MaxAttendees *int32
}

// Update applies the given changes to an event the tenant owns.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, in UpdateInput) (*Event, error) {
	ev, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Check(ev, tenantID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, errors.Join(ErrValidation, errors.New("title is required"))
		}
		ev.Title = *in.Title
	}
	if in.Description != nil {
		ev.Description = *in.Description
	}
	if in.Location != nil {
		ev.Location = *in.Location
	}
	if in.StartsAt != nil {
		ev.StartsAt = *in.StartsAt
	}
	if in.MaxAttendees != nil {
		if *in.MaxAttendees < 1 {
			return nil, errors.Join(ErrValidation, errors.New("max attendees must be positive"))
		}
		ev.MaxAttendees = in.MaxAttendees
	}
	ev.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, ev.ID)
	return ev, nil
}

// Approve moves a pending event into the approved status.
func (s *Service) Approve(ctx context.Context, tenantID, id uuid.UUID) (*Event, error) {
	return s.transition(ctx, tenantID, id, StatusApproved)
}

// Reject moves a pending event into the terminal rejected status.
func (s *Service) Reject(ctx context.Context, tenantID, id uuid.UUID) (*Event, error) {
	return s.transition(ctx, tenantID, id, StatusRejected)
}

// Cancel cancels a pending or approved event. Existing registrations are kept
// as a historical record; new ones are refused by the registration service.
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*Event, error) {
	return s.transition(ctx, tenantID, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, to Status) (*Event, error) {
	ev, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Check(ev, tenantID); err != nil {
		return nil, err
	}

	next, err := statusRules.Transition(ev.Status, to)
	if err != nil {
		return nil, err
	}
	ev.Status = next
	ev.Cancelled = next == StatusCancelled
	ev.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, ev.ID)
	return ev, nil
}

// Delete removes an event the tenant owns.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	ev, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := ownership.Check(ev, tenantID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID, id)
	return nil
}

// InvalidateStats drops the cached aggregate for one event. The registration
// service calls it after every registration mutation.
func (s *Service) InvalidateStats(ctx context.Context, tenantID, id uuid.UUID) {
	s.cache.Remove(ctx, cache.ForTenant(tenantID).Stats(Resource, id.String()))
}

// invalidate runs after a committed write, in a fixed order: the entity key,
// then every derived view under the resource prefix, then the aggregate key.
func (s *Service) invalidate(ctx context.Context, tenantID, id uuid.UUID) {
	keys := cache.ForTenant(tenantID)
	s.cache.Remove(ctx, keys.Entity(Resource, id.String()))
	s.cache.RemoveByPrefix(ctx, keys.ResourcePrefix(Resource))
	s.cache.Remove(ctx, keys.Stats(Resource, id.String()))
}
