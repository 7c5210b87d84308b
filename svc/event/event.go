// Package event implements tenant-scoped event management: cached reads,
// guarded single-entity access, and the write-then-invalidate protocol that
// keeps a tenant's derived views consistent with the store.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/regkit/regkit/pkg/lifecycle"
	"github.com/regkit/regkit/pkg/ownership"
)

// ErrNotFound is the uniform outcome for absent and cross-tenant events.
var ErrNotFound = ownership.ErrNotFound

// Status is an event's lifecycle status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// statusRules declares the permitted lifecycle transitions. Rejected and
// cancelled are terminal.
var statusRules = lifecycle.Rules[Status]{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCancelled},
}

// Event belongs to exactly one tenant; the owning relationship is immutable
// after creation. MaxAttendees == nil means unlimited capacity.
type Event struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	StartsAt     time.Time `json:"starts_at"`
	MaxAttendees *int32    `json:"max_attendees,omitempty"`
	Status       Status    `json:"status"`
	Cancelled    bool      `json:"cancelled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnerTenant implements ownership.Owned.
func (e *Event) OwnerTenant() uuid.UUID { return e.TenantID }

// Stats aggregates an event's registrations by outcome.
type Stats struct {
	EventID    uuid.UUID `json:"event_id"`
	Confirmed  int64     `json:"confirmed"`
	Waitlisted int64     `json:"waitlisted"`
	Cancelled  int64     `json:"cancelled"`
	Attended   int64     `json:"attended"`
}
