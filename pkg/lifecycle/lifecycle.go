// Package lifecycle declares which status transitions an entity permits and
// validates requested transitions against that table. It is the small,
// data-driven core of what a full state machine would provide; guards and
// side effects stay in the services that own the entities.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidTransition is returned when a transition is not declared.
var ErrInvalidTransition = errors.New("invalid status transition")

// Rules maps a status to the statuses it may transition to.
type Rules[S ~string] map[S][]S

// Can reports whether the transition from -> to is declared.
func (r Rules[S]) Can(from, to S) bool {
	return slices.Contains(r[from], to)
}

// Transition validates from -> to and returns the new status, or
// ErrInvalidTransition carrying both statuses.
func (r Rules[S]) Transition(from, to S) (S, error) {
	if !r.Can(from, to) {
		var zero S
		return zero, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}
