// Package registration implements attendee registrations: capacity-aware
// admission onto an event, lifecycle management, and signed tickets for
// confirmed attendees.
package registration

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/regkit/regkit/pkg/lifecycle"
	"github.com/regkit/regkit/pkg/ownership"
)

var (
	// ErrNotFound is the uniform outcome for absent and cross-tenant
	// registrations.
	ErrNotFound = ownership.ErrNotFound

	// ErrForbidden is returned when a registration targets an event owned by
	// another tenant. Unlike reads, the write path names the refusal: the
	// event id was valid, acting on it is not allowed.
	ErrForbidden = ownership.ErrForbidden

	// ErrEventNotOpen is returned when the event is cancelled or not yet
	// approved for registration.
	ErrEventNotOpen = errors.New("event is not open for registration")

	// ErrNotConfirmed is returned when a ticket is requested for a
	// registration that is not confirmed.
	ErrNotConfirmed = errors.New("registration is not confirmed")

	// ErrValidation is returned for structurally invalid input.
	ErrValidation = errors.New("invalid registration input")
)

// Status is a registration's lifecycle status.
type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusWaitlisted Status = "waitlisted"
	StatusCancelled  Status = "cancelled"
)

// statusRules declares the permitted transitions. Waitlisted registrations
// may be promoted by an organizer; cancelled is terminal.
var statusRules = lifecycle.Rules[Status]{
	StatusConfirmed:  {StatusCancelled},
	StatusWaitlisted: {StatusConfirmed, StatusCancelled},
}

// Registration records one attendee on one event. TenantID denormalizes the
// event's owner so ownership checks never need a join.
type Registration struct {
	ID           uuid.UUID  `json:"id"`
	EventID      uuid.UUID  `json:"event_id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Status       Status     `json:"status"`
	HasAttended  bool       `json:"has_attended"`
	RegisteredAt time.Time  `json:"registered_at"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
}

// OwnerTenant implements ownership.Owned.
func (r *Registration) OwnerTenant() uuid.UUID { return r.TenantID }
