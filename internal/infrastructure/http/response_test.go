package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parcelhub/dispatch-engine/internal/dispatch"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/planner"
	"github.com/parcelhub/dispatch-engine/internal/scan"
)

func TestClassify_NotFound(t *testing.T) {
	code, _ := classify(ports.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestClassify_CapacityExhausted(t *testing.T) {
	code, _ := classify(planner.ErrNoCapacity)
	assert.Equal(t, http.StatusConflict, code)
}

func TestClassify_NotAssigned(t *testing.T) {
	code, _ := classify(&ports.NotAssignedError{ActorID: "u1", Reason: "not the assignee"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestClassify_ScanNotAssigned(t *testing.T) {
	code, _ := classify(&scan.ErrNotAssigned{ActorID: "u1", Reason: "wrong courier"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestClassify_InvalidTransition(t *testing.T) {
	code, _ := classify(&journey.ErrInvalidOrderTransition{From: journey.OrderStatusCompleted, Event: "cancel"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestClassify_IncompatibleVehicle(t *testing.T) {
	code, _ := classify(&dispatch.ErrIncompatibleVehicle{Vehicle: "BIKE", LegType: "TRANSFER"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestClassify_Validation(t *testing.T) {
	code, _ := classify(&ports.ValidationError{Field: "lat", Reason: "missing"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestClassify_UnknownErrorIsOpaque(t *testing.T) {
	code, msg := classify(assertAnError{})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error", msg)
}

type assertAnError struct{}

func (assertAnError) Error() string { return "boom: leaked internal detail" }
