// Package ownership verifies that a fetched entity belongs to the caller's
// tenant before the entity is handed back.
//
// Read paths use Check, which reports a cross-tenant entity as not found.
// Collapsing "absent" and "owned by someone else" into one outcome keeps a
// probing caller from learning that another tenant's entity exists at all.
// The single write path that behaves differently (attaching an attendee to
// an event) uses CheckWrite, which surfaces an explicit forbidden error.
package ownership

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound reports an absent entity or a cross-tenant entity on a read
	// path; the two causes are deliberately indistinguishable.
	ErrNotFound = errors.New("entity not found")

	// ErrForbidden reports a cross-tenant entity on the attendee write path.
	ErrForbidden = errors.New("entity belongs to another tenant")
)

// Owned is implemented by every entity that traces to an owning tenant.
type Owned interface {
	OwnerTenant() uuid.UUID
}

// Check validates the ownership chain for read paths. A nil entity and an
// ownership mismatch both yield ErrNotFound. The check is a pure predicate;
// a mismatch is never transient and is never retried.
func Check(entity Owned, callerTenant uuid.UUID) error {
	if entity == nil || entity.OwnerTenant() != callerTenant {
		return ErrNotFound
	}
	return nil
}

// CheckWrite validates ownership for the attendee write path, where a
// mismatch is surfaced as ErrForbidden instead of being masked as not found.
// An absent entity is still ErrNotFound.
func CheckWrite(entity Owned, callerTenant uuid.UUID) error {
	if entity == nil {
		return ErrNotFound
	}
	if entity.OwnerTenant() != callerTenant {
		return ErrForbidden
	}
	return nil
}
