// Package admission decides whether a new registration is confirmed
// immediately or placed on the event's waitlist.
//
// The rule itself is simple: events without a capacity limit always confirm,
// and limited events confirm while the confirmed count is below the limit.
// The difficulty is that counting and inserting are two steps. Two
// registrants who both observe count == limit-1 would both be confirmed,
// overshooting capacity. Admit closes that race by serializing the
// count-then-insert sequence per event id behind a keyed lock, so exactly
// one registrant at a time decides and commits.
package admission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/regkit/regkit/pkg/keylock"
)

// Status is the initial status assigned to a new registration.
type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusWaitlisted Status = "waitlisted"
)

// ErrCapacityRace is returned when the per-event serialization point cannot
// be acquired before the deadline. It is retryable: the registration was not
// created and the caller may simply try again.
var ErrCapacityRace = errors.New("admission: event is contended, retry")

// ConfirmedCounter reports the number of currently confirmed, non-cancelled
// registrations of an event.
type ConfirmedCounter interface {
	CountConfirmed(ctx context.Context, eventID uuid.UUID) (int64, error)
}

// DefaultLockTimeout bounds how long one registrant may wait behind another
// for the same event, so a stuck registration cannot starve the event.
const DefaultLockTimeout = 5 * time.Second

// Controller assigns initial registration statuses.
type Controller struct {
	counter     ConfirmedCounter
	locks       *keylock.KeyLock[uuid.UUID]
	lockTimeout time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithLockTimeout overrides DefaultLockTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.lockTimeout = d
		}
	}
}

// New creates a Controller counting confirmed registrations through counter.
func New(counter ConfirmedCounter, opts ...Option) *Controller {
	c := &Controller{
		counter:     counter,
		locks:       keylock.New[uuid.UUID](),
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitialStatus computes the status a registration created right now would
// receive. capacity == nil means unlimited. The result is only trustworthy
// while the caller holds the event's admission lock; use Admit for the full
// decide-and-commit sequence.
func (c *Controller) InitialStatus(ctx context.Context, eventID uuid.UUID, capacity *int32) (Status, error) {
	if capacity == nil {
		return StatusConfirmed, nil
	}
	count, err := c.counter.CountConfirmed(ctx, eventID)
	if err != nil {
		return "", err
	}
	if count < int64(*capacity) {
		return StatusConfirmed, nil
	}
	return StatusWaitlisted, nil
}

// Admit runs the admission decision and commit as one serialized unit per
// event id: it acquires the event's lock, computes the initial status, and
// invokes commit with it while still holding the lock. Unlimited events skip
// the lock entirely since their status never depends on the count.
//
// If the lock cannot be acquired within the configured timeout, Admit
// returns ErrCapacityRace and commit is not invoked.
func (c *Controller) Admit(ctx context.Context, eventID uuid.UUID, capacity *int32, commit func(ctx context.Context, status Status) error) (Status, error) {
	if capacity == nil {
		if err := commit(ctx, StatusConfirmed); err != nil {
			return "", err
		}
		return StatusConfirmed, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, c.lockTimeout)
	defer cancel()

	release, err := c.locks.Acquire(lockCtx, eventID)
	if err != nil {
		return "", errors.Join(ErrCapacityRace, err)
	}
	defer release()

	status, err := c.InitialStatus(ctx, eventID, capacity)
	if err != nil {
		return "", err
	}
	if err := commit(ctx, status); err != nil {
		return "", err
	}
	return status, nil
}
