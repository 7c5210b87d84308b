package registration

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/regkit/regkit/pkg/admission"
	"github.com/regkit/regkit/pkg/cache"
	"github.com/regkit/regkit/pkg/ownership"
	"github.com/regkit/regkit/svc/event"
)

const (
	resource = "registrations"

	entityTTL = 10 * time.Minute
	viewTTL   = time.Minute
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Repository persists registrations. Find loads by primary key without a
// tenant filter; the service applies the ownership guard on top.
// Implementations return ownership.ErrNotFound for absent rows.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (*Registration, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Registration, error)
	Create(ctx context.Context, r *Registration) error
	Update(ctx context.Context, r *Registration) error

	// CountConfirmed implements admission.ConfirmedCounter.
	CountConfirmed(ctx context.Context, eventID uuid.UUID) (int64, error)
}

// EventStore loads events by primary key without a tenant filter, so the
// registration write path can tell a foreign event apart from a missing one.
type EventStore interface {
	Find(ctx context.Context, id uuid.UUID) (*event.Event, error)
}

// StatsInvalidator drops an event's cached registration aggregate after a
// registration mutation. *event.Service satisfies it.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, tenantID, eventID uuid.UUID)
}

// Service exposes registration operations. Reads are cached and guarded the
// same way events are; Register additionally runs through the admission
// controller so capacity is never overshot.
type Service struct {
	repo      Repository
	events    EventStore
	admission *admission.Controller
	cache     *cache.Cache
	entities  cache.Typed[*Registration]
	views     cache.Typed[[]Registration]
	stats     StatsInvalidator
	log       *slog.Logger
	now       func() time.Time

	admissionOpts []admission.Option
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

// WithAdmissionOptions passes options through to the admission controller.
func WithAdmissionOptions(opts ...admission.Option) Option {
	return func(s *Service) { s.admissionOpts = append(s.admissionOpts, opts...) }
}

// NewService creates a registration service. stats may be nil when no event
// aggregate cache is in play, for example in tests.
func NewService(repo Repository, events EventStore, c *cache.Cache, stats StatsInvalidator, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		events:   events,
		cache:    c,
		entities: cache.NewTyped[*Registration](c),
		views:    cache.NewTyped[[]Registration](c),
		stats:    stats,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.admission = admission.New(repo, s.admissionOpts...)
	return s
}

// RegisterInput holds the attendee-supplied fields.
type RegisterInput struct {
	Name  string
	Email string
}

// Register admits an attendee onto an event. The caller's tenant must own the
// event; registering against a foreign event is ErrForbidden. The initial
// status is decided by the admission controller: confirmed while capacity
// remains, waitlisted once it is exhausted, and always confirmed for events
// without a limit.
func (s *Service) Register(ctx context.Context, tenantID, eventID uuid.UUID, in RegisterInput) (*Registration, error) {
	if in.Name == "" {
		return nil, errors.Join(ErrValidation, errors.New("name is required"))
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, errors.Join(ErrValidation, errors.New("invalid email address"))
	}

	ev, err := s.events.Find(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := ownership.CheckWrite(ev, tenantID); err != nil {
		return nil, err
	}
	if ev.Cancelled || ev.Status != event.StatusApproved {
		return nil, ErrEventNotOpen
	}

	reg := &Registration{
		ID:           uuid.New(),
		EventID:      ev.ID,
		TenantID:     ev.TenantID,
		Name:         in.Name,
		Email:        in.Email,
		RegisteredAt: s.now().UTC(),
	}

	status, err := s.admission.Admit(ctx, ev.ID, ev.MaxAttendees, func(ctx context.Context, st admission.Status) error {
		reg.Status = Status(st)
		return s.repo.Create(ctx, reg)
	})
	if err != nil {
		return nil, err
	}
	reg.Status = Status(status)

	s.invalidate(ctx, tenantID, reg)
	return reg, nil
}

// Get loads one registration for the given tenant.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Registration, error) {
	key := cache.ForTenant(tenantID).Entity(resource, id.String())
	reg, err := s.entities.GetOrSet(ctx, key, entityTTL, func(ctx context.Context) (*Registration, error) {
		reg, err := s.repo.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := ownership.Check(reg, tenantID); err != nil {
			return nil, err
		}
		return reg, nil
	})
	if err != nil {
		return nil, err
	}
	if err := ownership.Check(reg, tenantID); err != nil {
		return nil, err
	}
	return reg, nil
}

// ListByEvent returns every registration of one event. Ownership of the event
// is established first, so a foreign event id behaves as not found.
func (s *Service) ListByEvent(ctx context.Context, tenantID, eventID uuid.UUID) ([]Registration, error) {
	ev, err := s.events.Find(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := ownership.Check(ev, tenantID); err != nil {
		return nil, err
	}

	key := cache.ForTenant(tenantID).View(resource, "event"+cache.Separator+eventID.String())
	return s.views.GetOrSet(ctx, key, viewTTL, func(ctx context.Context) ([]Registration, error) {
		return s.repo.ListByEvent(ctx, eventID)
	})
}

// Cancel cancels a registration. No waitlisted registration is promoted
// automatically; promotion is an explicit organizer action.
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*Registration, error) {
	return s.transition(ctx, tenantID, id, StatusCancelled)
}

// Promote confirms a waitlisted registration. The admission controller is
// deliberately not consulted: promotion is an organizer override and may
// exceed the configured capacity.
func (s *Service) Promote(ctx context.Context, tenantID, id uuid.UUID) (*Registration, error) {
	return s.transition(ctx, tenantID, id, StatusConfirmed)
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, to Status) (*Registration, error) {
	reg, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Check(reg, tenantID); err != nil {
		return nil, err
	}

	next, err := statusRules.Transition(reg.Status, to)
	if err != nil {
		return nil, err
	}
	reg.Status = next
	if next == StatusCancelled {
		t := s.now().UTC()
		reg.CancelledAt = &t
	}

	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, reg)
	return reg, nil
}

// MarkAttended records check-in for a confirmed registration.
func (s *Service) MarkAttended(ctx context.Context, tenantID, id uuid.UUID) (*Registration, error) {
	reg, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Check(reg, tenantID); err != nil {
		return nil, err
	}
	if reg.Status != StatusConfirmed {
		return nil, ErrNotConfirmed
	}

	reg.HasAttended = true
	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, reg)
	return reg, nil
}

// invalidate runs after a committed write: the registration's entity key,
// then every derived registration view, then the owning event's aggregate.
func (s *Service) invalidate(ctx context.Context, tenantID uuid.UUID, reg *Registration) {
	keys := cache.ForTenant(tenantID)
	s.cache.Remove(ctx, keys.Entity(resource, reg.ID.String()))
	s.cache.RemoveByPrefix(ctx, keys.ResourcePrefix(resource))
	if s.stats != nil {
		s.stats.InvalidateStats(ctx, tenantID, reg.EventID)
	}
}
