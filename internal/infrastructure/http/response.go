// Package http is the core's external surface: JSON over plain net/http
// (spec.md §6), grounded on
// oms/internal/infrastructure/http/stock_event.go.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parcelhub/dispatch-engine/internal/dispatch"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/planner"
	"github.com/parcelhub/dispatch-engine/internal/routing"
	"github.com/parcelhub/dispatch-engine/internal/scan"
)

// envelope is the `{status, message, ...}` shape spec.md §7 requires on
// every response.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Status: "ok", Data: data})
}

func writeCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{Status: "ok", Data: data})
}

// writeError maps err to an HTTP status via its error kind (spec.md §7)
// and writes the envelope. 4xx messages are safe to show; 5xx messages
// are replaced with an opaque string so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	code, message := classify(err)
	writeJSON(w, code, envelope{Status: "error", Message: message})
}

func classify(err error) (int, string) {
	var (
		validationErr    *ports.ValidationError
		invalidStateErr  *ports.InvalidStateError
		notAssignedErr   *ports.NotAssignedError
		orderTerminalErr *journey.ErrOrderTerminalState
		invalidOrderErr  *journey.ErrInvalidOrderTransition
		invalidLegErr    *journey.ErrInvalidLegTransition
		outOfOrderErr    *journey.ErrOutOfOrder
		incompatVehicle  *dispatch.ErrIncompatibleVehicle
		courierUnavail   *dispatch.ErrCourierUnavailable
		legCompletedErr  *dispatch.ErrLegCompleted
		scanNotAssigned  *scan.ErrNotAssigned
		noMatchingLeg    *scan.ErrNoMatchingLeg
		wrongWarehouse   *scan.ErrWrongWarehouse
	)

	switch {
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, scan.ErrBarcodeNotFound):
		return http.StatusNotFound, "barcode not found"
	case errors.Is(err, ports.ErrCapacityExhausted), errors.Is(err, planner.ErrNoCapacity):
		return http.StatusConflict, "no available capacity"
	case errors.Is(err, ports.ErrUpstream), errors.Is(err, routing.ErrUpstream):
		return http.StatusBadGateway, "upstream service unavailable"
	case errors.Is(err, routing.ErrAddressNotFound), errors.Is(err, routing.ErrNoRoute):
		return http.StatusBadGateway, "routing provider could not resolve the request"
	case errors.Is(err, journey.ErrEndpointInvariant), errors.Is(err, journey.ErrMissingCoordinates),
		errors.Is(err, planner.ErrMissingCoordinates), errors.Is(err, dispatch.ErrLegsAlreadyExist):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &notAssignedErr), errors.As(err, &scanNotAssigned):
		return http.StatusForbidden, err.Error()
	case errors.As(err, &invalidStateErr), errors.As(err, &orderTerminalErr), errors.As(err, &invalidOrderErr),
		errors.As(err, &invalidLegErr), errors.As(err, &outOfOrderErr), errors.As(err, &incompatVehicle),
		errors.As(err, &courierUnavail), errors.As(err, &legCompletedErr), errors.As(err, &noMatchingLeg),
		errors.As(err, &wrongWarehouse):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}
