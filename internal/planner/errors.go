// Package planner implements the Leg Planner: given an order with
// geocoded endpoints, it selects an entry hub and exit satellite and
// produces a 2- or 3-leg journey template. Grounded on
// courier-emulation/internal/domain/services/route_generator.go for the
// matrix-call-then-pick-best shape.
package planner

import "errors"

// Failure kinds from spec.md §4.3.
var (
	// ErrMissingCoordinates is returned when the SME or receiver has not
	// been geocoded yet; the planner never geocodes itself.
	ErrMissingCoordinates = errors.New("planner: missing coordinates")
	// ErrNoCapacity is returned when there are zero active HUBs or zero
	// active SATELLITEs to choose from.
	ErrNoCapacity = errors.New("planner: no active warehouse capacity")
)
