package journey

// OrderStatus is the closed set of Order lifecycle states (spec.md §3).
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "PENDING"
	OrderStatusInTransit   OrderStatus = "IN_TRANSIT"
	OrderStatusAtWarehouse OrderStatus = "AT_WAREHOUSE"
	OrderStatusDelivering  OrderStatus = "DELIVERING"
	OrderStatusCompleted   OrderStatus = "COMPLETED"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string { return string(s) }

// Terminal reports whether the order status is one of the two terminal
// states named in spec.md §3.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// LegStatus is the closed set of JourneyLeg lifecycle states.
type LegStatus string

const (
	LegStatusPending    LegStatus = "PENDING"
	LegStatusInProgress LegStatus = "IN_PROGRESS"
	LegStatusCompleted  LegStatus = "COMPLETED"
	LegStatusCancelled  LegStatus = "CANCELLED"
)

func (s LegStatus) String() string { return string(s) }

func (s LegStatus) Terminal() bool {
	return s == LegStatusCompleted || s == LegStatusCancelled
}

// LegType is the closed set of leg kinds. Always in the order
// PICKUP, (TRANSFER), DELIVERY.
type LegType string

const (
	LegTypePickup   LegType = "PICKUP"
	LegTypeTransfer LegType = "TRANSFER"
	LegTypeDelivery LegType = "DELIVERY"
)

func (t LegType) String() string { return string(t) }
