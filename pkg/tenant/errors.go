package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches the identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned when the resolved tenant is deactivated.
	ErrTenantInactive = errors.New("tenant is inactive")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when a required tenant is missing
	// from the request context.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
