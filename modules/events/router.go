// Package events mounts the tenant-facing HTTP API: event management,
// attendee registration, and ticket issuing. Every route below the tenant
// middleware acts strictly within the resolved tenant's namespace.
package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/regkit/regkit/pkg/tenant"
)

// RouterOptions wires the services the module exposes. Tickets is optional;
// without it the ticket routes are not mounted.
type RouterOptions struct {
	Events        *EventHandler
	Registrations *RegistrationHandler
	Tickets       *TicketHandler

	// Resolve and Provider configure the tenant middleware.
	Resolve  tenant.Resolver
	Provider tenant.Provider

	// TenantOptions is passed through to the tenant middleware.
	TenantOptions []tenant.Option
}

// Router builds the module router. All routes require a resolved tenant.
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(tenant.Middleware(opts.Resolve, opts.Provider, opts.TenantOptions...))
	r.Use(tenant.RequireTenant(nil))

	r.Route("/events", func(r chi.Router) {
		r.Post("/", opts.Events.create)
		r.Get("/", opts.Events.list)
		r.Get("/upcoming", opts.Events.listUpcoming)
		r.Get("/pending", opts.Events.listPending)

		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", opts.Events.get)
			r.Patch("/", opts.Events.update)
			r.Delete("/", opts.Events.delete)
			r.Post("/approve", opts.Events.approve)
			r.Post("/reject", opts.Events.reject)
			r.Post("/cancel", opts.Events.cancel)
			r.Get("/stats", opts.Events.stats)

			r.Get("/registrations", opts.Registrations.listByEvent)
			r.Post("/registrations", opts.Registrations.register)
		})
	})

	r.Route("/registrations/{registrationID}", func(r chi.Router) {
		r.Get("/", opts.Registrations.get)
		r.Post("/cancel", opts.Registrations.cancel)
		r.Post("/promote", opts.Registrations.promote)
		r.Post("/attend", opts.Registrations.markAttended)

		if opts.Tickets != nil {
			r.Get("/ticket", opts.Tickets.issue)
			r.Get("/ticket.png", opts.Tickets.issueQR)
		}
	})

	if opts.Tickets != nil {
		r.Post("/tickets/verify", opts.Tickets.verify)
	}

	return r
}

// tenantID extracts the tenant stamped by the middleware. Routes are mounted
// behind RequireTenant, so absence is a programming error.
func tenantID(r *http.Request) uuid.UUID {
	return tenant.MustFromContext(r.Context()).ID
}
