package journey

import "time"

// DomainEvent is the closed interface for events raised by the Order and
// JourneyLeg aggregates. Application code publishes them to the
// NotificationSink/event bus after a successful commit (spec.md §5).
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// OrderCreatedEvent is raised when a new journey (2 or 3 legs) is planned
// and attached to an order.
type OrderCreatedEvent struct {
	OrderID   string
	AreaID    string
	Legs      int
	Occurred  time.Time
}

func (e OrderCreatedEvent) EventType() string    { return "journey.order_created" }
func (e OrderCreatedEvent) OccurredAt() time.Time { return e.Occurred }

// OrderStatusChangedEvent is raised on every order status transition.
type OrderStatusChangedEvent struct {
	OrderID  string
	From     OrderStatus
	To       OrderStatus
	Occurred time.Time
}

func (e OrderStatusChangedEvent) EventType() string    { return "journey.order_status_changed" }
func (e OrderStatusChangedEvent) OccurredAt() time.Time { return e.Occurred }

// LegStatusChangedEvent is raised on every leg status transition.
type LegStatusChangedEvent struct {
	OrderID  string
	LegID    string
	LegType  LegType
	From     LegStatus
	To       LegStatus
	Occurred time.Time
}

func (e LegStatusChangedEvent) EventType() string    { return "journey.leg_status_changed" }
func (e LegStatusChangedEvent) OccurredAt() time.Time { return e.Occurred }

// OrderDeliveredEvent is raised when the final DELIVERY leg completes;
// the application layer forwards it to the NotificationSink for the SME
// (spec.md §4.5 action 5).
type OrderDeliveredEvent struct {
	OrderID  string
	SmeID    string
	Occurred time.Time
}

func (e OrderDeliveredEvent) EventType() string    { return "journey.order_delivered" }
func (e OrderDeliveredEvent) OccurredAt() time.Time { return e.Occurred }

// IncidentReassignedEvent is raised by the Incident Handler (C7) when a
// courier's live legs are rerouted to a rescuer.
type IncidentReassignedEvent struct {
	OrderID      string
	LegID        string
	FromCourier  string
	ToCourier    string
	Note         string
	Occurred     time.Time
}

func (e IncidentReassignedEvent) EventType() string    { return "journey.incident_reassigned" }
func (e IncidentReassignedEvent) OccurredAt() time.Time { return e.Occurred }
