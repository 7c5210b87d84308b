package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/regkit/regkit/pkg/admission"
	"github.com/regkit/regkit/pkg/lifecycle"
	"github.com/regkit/regkit/pkg/ownership"
	"github.com/regkit/regkit/pkg/tenant"
	"github.com/regkit/regkit/svc/event"
	"github.com/regkit/regkit/svc/registration"
)

// response is the JSON envelope every endpoint renders.
type response struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Data: data})
}

// respondError maps domain errors onto HTTP statuses. The mapping preserves
// the service-layer distinction between hidden resources (404) and refused
// actions (403), and marks the admission lock timeout as retryable (503).
func respondError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal_error"

	switch {
	case errors.Is(err, ownership.ErrNotFound),
		errors.Is(err, tenant.ErrTenantNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, ownership.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, tenant.ErrTenantInactive):
		status, code = http.StatusForbidden, "tenant_inactive"
	case errors.Is(err, admission.ErrCapacityRace):
		status, code = http.StatusServiceUnavailable, "retry_later"
		w.Header().Set("Retry-After", strconv.Itoa(1))
	case errors.Is(err, event.ErrValidation),
		errors.Is(err, registration.ErrValidation):
		status, code = http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, registration.ErrEventNotOpen):
		status, code = http.StatusConflict, "event_not_open"
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, registration.ErrNotConfirmed):
		status, code = http.StatusConflict, "not_confirmed"
	case errors.Is(err, registration.ErrInvalidTicket):
		status, code = http.StatusBadRequest, "invalid_ticket"
	}

	detail := &errorDetail{Code: code}
	if status < http.StatusInternalServerError {
		detail.Message = err.Error()
	} else {
		detail.Message = http.StatusText(status)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Error: detail})
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondBadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(response{Error: &errorDetail{Code: "bad_request", Message: msg}})
}
