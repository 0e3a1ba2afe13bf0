// Package scan implements the Scan State Machine (C5): the central
// barcode-scan workflow that advances leg and order status (spec.md
// §4.5). Action dispatch is modeled as a closed set of variants,
// generalized from oms/internal/domain/order/v1/order_state.go's single
// FSM usage into a per-leg-type dispatch table, per spec.md §9's
// design note on replacing dynamic tool dispatch with tagged variants.
package scan

import "fmt"

// ErrBarcodeNotFound is returned for an unknown or inactive code_value
// (spec.md §4.5 hard rejection).
var ErrBarcodeNotFound = fmt.Errorf("scan: barcode not found")

// ErrNotAssigned is returned when a courier scans a leg assigned to
// someone else, or a staff/courier role mismatch occurs.
type ErrNotAssigned struct {
	ActorID string
	Reason  string
}

func (e *ErrNotAssigned) Error() string {
	return fmt.Sprintf("scan: actor %s not assigned: %s", e.ActorID, e.Reason)
}

// ErrNoMatchingLeg is returned when an action cannot find the leg it
// expects to act on (e.g. PICKUP_CONFIRM with no PENDING pickup leg).
type ErrNoMatchingLeg struct {
	Action string
	Reason string
}

func (e *ErrNoMatchingLeg) Error() string {
	return fmt.Sprintf("scan: no matching leg for action %s: %s", e.Action, e.Reason)
}

// ErrWrongWarehouse is returned when staff scan at a warehouse that is
// not the expected endpoint (spec.md §4.5 hard rejection), outside the
// WAREHOUSE_IN warning-policy exception.
type ErrWrongWarehouse struct {
	Expected string
	Actual   string
}

func (e *ErrWrongWarehouse) Error() string {
	return fmt.Sprintf("scan: warehouse mismatch: expected %s, got %s", e.Expected, e.Actual)
}
