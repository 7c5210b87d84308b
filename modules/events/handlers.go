package events

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/regkit/regkit/svc/event"
	"github.com/regkit/regkit/svc/registration"
)

// EventHandler serves the event management endpoints.
type EventHandler struct {
	events *event.Service
}

// NewEventHandler creates an EventHandler over the event service.
func NewEventHandler(events *event.Service) *EventHandler {
	return &EventHandler{events: events}
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

type createEventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	StartsAt     time.Time `json:"starts_at"`
	MaxAttendees *int32    `json:"max_attendees"`
}

func (h *EventHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "malformed request body")
		return
	}

	ev, err := h.events.Create(r.Context(), tenantID(r), event.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		StartsAt:     req.StartsAt,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, ev)
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	evs, err := h.events.List(r.Context(), tenantID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, evs)
}

func (h *EventHandler) listUpcoming(w http.ResponseWriter, r *http.Request) {
	evs, err := h.events.ListUpcoming(r.Context(), tenantID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, evs)
}

func (h *EventHandler) listPending(w http.ResponseWriter, r *http.Request) {
	evs, err := h.events.ListPending(r.Context(), tenantID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, evs)
}

func (h *EventHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventID")
	if !ok {
		respondBadRequest(w, "invalid event id")
		return
	}
	ev, err := h.events.Get(r.Context(), tenantID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, ev)
}

type updateEventRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Location     *string    `json:"location"`
	StartsAt     *time.Time `json:"starts_at"`
	MaxAttendees *int32     `json:"max_attendees"`
}

func (h *EventHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventID")
	if !ok {
		respondBadRequest(w, "invalid event id")
		return
	}
	var req updateEventRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "malformed request body")
		return
	}

	ev, err := h.events.Update(r.Context(), tenantID(r), id, event.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		StartsAt:     req.StartsAt,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, ev)
}

func (h *EventHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventID")
	if !ok {
		respondBadRequest(w, "invalid event id")
		return
	}
	if err := h.events.Delete(r.Context(), tenantID(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Approve)
}

func (h *EventHandler) reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Reject)
}

func (h *EventHandler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Cancel)
}

func (h *EventHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, tenantID, id uuid.UUID) (*event.Event, error)) {
	id, ok := pathID(r, "eventID")
	if !ok {
		respondBadRequest(w, "invalid event id")
		return
	}
	ev, err := op(r.Context(), tenantID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, ev)
}

func (h *EventHandler) stats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventID")
	if !ok {
		respondBadRequest(w, "invalid event id")
		return
	}
	st, err := h.events.GetStats(r.Context(), tenantID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

// RegistrationHandler serves the registration endpoints.
type RegistrationHandler struct {
	regs *registration.Service
}

// NewRegistrationHandler creates a RegistrationHandler over the registration
// service.
func NewRegistrationHandler(regs *registration.Service) *RegistrationHandler {
	return &RegistrationHandler{regs: regs}
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *RegistrationHandler) register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "eventID")
	if !ok {
		respondBadRequest(w, "invalid event id")
		return
	}
	var req registerRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "malformed request body")
		return
	}

	reg, err := h.regs.Register(r.Context(), tenantID(r), eventID, registration.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, reg)
}

func (h *RegistrationHandler) listByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "eventID")
	if !ok {
		respondBadRequest(w, "invalid event id")
		return
	}
	regs, err := h.regs.ListByEvent(r.Context(), tenantID(r), eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, regs)
}

func (h *RegistrationHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "registrationID")
	if !ok {
		respondBadRequest(w, "invalid registration id")
		return
	}
	reg, err := h.regs.Get(r.Context(), tenantID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reg)
}

func (h *RegistrationHandler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.regs.Cancel)
}

func (h *RegistrationHandler) promote(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.regs.Promote)
}

func (h *RegistrationHandler) markAttended(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.regs.MarkAttended)
}

func (h *RegistrationHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, tenantID, id uuid.UUID) (*registration.Registration, error)) {
	id, ok := pathID(r, "registrationID")
	if !ok {
		respondBadRequest(w, "invalid registration id")
		return
	}
	reg, err := op(r.Context(), tenantID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reg)
}

// TicketHandler serves ticket issuing and verification.
type TicketHandler struct {
	tickets *registration.TicketService
}

// NewTicketHandler creates a TicketHandler over the ticket service.
func NewTicketHandler(tickets *registration.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

func (h *TicketHandler) issue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "registrationID")
	if !ok {
		respondBadRequest(w, "invalid registration id")
		return
	}
	raw, err := h.tickets.Issue(r.Context(), tenantID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"ticket": raw})
}

const ticketQRSize = 256

func (h *TicketHandler) issueQR(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "registrationID")
	if !ok {
		respondBadRequest(w, "invalid registration id")
		return
	}
	png, err := h.tickets.IssueQR(r.Context(), tenantID(r), id, ticketQRSize)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type verifyTicketRequest struct {
	Ticket string `json:"ticket"`
}

func (h *TicketHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyTicketRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "malformed request body")
		return
	}
	reg, err := h.tickets.Verify(r.Context(), tenantID(r), req.Ticket)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reg)
}
