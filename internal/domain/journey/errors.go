package journey

import "fmt"

// ErrOrderTerminalState is returned when an operation is rejected because
// the order is already COMPLETED or CANCELLED.
type ErrOrderTerminalState struct {
	Status OrderStatus
}

func (e *ErrOrderTerminalState) Error() string {
	return fmt.Sprintf("journey: order in terminal state %s", e.Status)
}

// ErrInvalidOrderTransition is returned when an order status transition is
// not reachable from the current status.
type ErrInvalidOrderTransition struct {
	From  OrderStatus
	Event string
}

func (e *ErrInvalidOrderTransition) Error() string {
	return fmt.Sprintf("journey: order cannot handle %s from %s", e.Event, e.From)
}

// ErrInvalidLegTransition is returned when a leg status transition is not
// reachable from the current status.
type ErrInvalidLegTransition struct {
	LegID string
	From  LegStatus
	Event string
}

func (e *ErrInvalidLegTransition) Error() string {
	return fmt.Sprintf("journey: leg %s cannot handle %s from %s", e.LegID, e.Event, e.From)
}

// ErrOutOfOrder is returned when completing a leg would leave an
// earlier-sequence leg on the same order incomplete (spec.md §8 property 2).
type ErrOutOfOrder struct {
	OrderID        string
	Sequence       int
	BlockingSeq    int
}

func (e *ErrOutOfOrder) Error() string {
	return fmt.Sprintf("journey: order %s leg seq %d cannot complete before seq %d", e.OrderID, e.Sequence, e.BlockingSeq)
}

// ErrEndpointInvariant is returned when a leg's origin/destination fields
// violate the endpoint invariant (spec.md §3).
var ErrEndpointInvariant = fmt.Errorf("journey: leg violates endpoint invariant")

// ErrMissingCoordinates is returned by the Leg Planner when the SME or
// receiver lacks coordinates (spec.md §4.3).
var ErrMissingCoordinates = fmt.Errorf("journey: missing coordinates")
