package scan

import "github.com/google/uuid"

// Role is the abstract actor role the scan state machine is defined in
// terms of (spec.md §9 Open Question: concrete identity roles like
// DISPATCH/WAREHOUSE_MANAGER map onto these two at the integration
// layer, not here).
type Role string

const (
	RoleCourier        Role = "COURIER"
	RoleWarehouseStaff Role = "WAREHOUSE_STAFF"
)

// Action is the closed set of scan action variants (spec.md §4.5),
// modeled as a tagged variant rather than dynamic name lookup (spec.md
// §9 design note).
type Action string

const (
	ActionPickupConfirm    Action = "PICKUP_CONFIRM"
	ActionWarehouseIn      Action = "WAREHOUSE_IN"
	ActionWarehouseOut     Action = "WAREHOUSE_OUT"
	ActionDeliveryStart    Action = "DELIVERY_START"
	ActionDeliveryComplete Action = "DELIVERY_COMPLETE"
)

// Request is the input to Execute: one barcode scan submitted by an
// actor (spec.md §4.5, §6 POST /barcodes/scan).
type Request struct {
	CodeValue   string
	Action      Action
	ActorID     uuid.UUID
	ActorRole   Role
	WarehouseID *uuid.UUID
	Note        string
}

// Result is the outcome returned to the caller (spec.md §6 response
// shape) and cached for idempotency.
type Result struct {
	Success         bool
	Message         string
	OrderID         uuid.UUID
	OrderCode       string
	Action          Action
	CurrentWarehouse *uuid.UUID
}
