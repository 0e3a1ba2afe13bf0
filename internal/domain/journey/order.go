package journey

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/fsm"
)

// Transition events for the Order status FSM, named after the scan
// actions that drive them (spec.md §4.5).
const (
	EventPickupConfirm   fsm.Event = "PICKUP_CONFIRM"
	EventWarehouseIn     fsm.Event = "WAREHOUSE_IN"
	EventWarehouseOut    fsm.Event = "WAREHOUSE_OUT"
	EventDeliveryStart   fsm.Event = "DELIVERY_START"
	EventDeliveryComplete fsm.Event = "DELIVERY_COMPLETE"
	EventCancel          fsm.Event = "CANCEL"
)

// Order is the indivisible shipment aggregate (spec.md §3). It owns its
// status FSM; its legs and barcode are separate aggregates referenced by
// id and coordinated by the usecases layer under a per-order lock (§5).
type Order struct {
	mu sync.Mutex

	id              uuid.UUID
	orderCode       string
	smeID           uuid.UUID
	receiverName    string
	receiverPhone   string
	receiverAddress string
	receiverLat     *float64
	receiverLon     *float64
	weight          float64
	barcodeID       uuid.UUID
	areaID          uuid.UUID
	totalDistanceKm float64

	domainEvents []DomainEvent

	fsm *fsm.FSM
}

// NewOrder constructs a new PENDING order.
func NewOrder(id uuid.UUID, orderCode string, smeID uuid.UUID, receiverName, receiverPhone, receiverAddress string, receiverLat, receiverLon *float64, weight float64, barcodeID, areaID uuid.UUID) *Order {
	o := &Order{
		id:              id,
		orderCode:       orderCode,
		smeID:           smeID,
		receiverName:    receiverName,
		receiverPhone:   receiverPhone,
		receiverAddress: receiverAddress,
		receiverLat:     receiverLat,
		receiverLon:     receiverLon,
		weight:          weight,
		barcodeID:       barcodeID,
		areaID:          areaID,
	}
	o.fsm = fsm.New(fsm.State(OrderStatusPending.String()))
	o.addTransitionRules()

	return o
}

// ReconstituteOrder rebuilds an Order from persisted state.
func ReconstituteOrder(id uuid.UUID, orderCode string, smeID uuid.UUID, receiverName, receiverPhone, receiverAddress string, receiverLat, receiverLon *float64, weight float64, status OrderStatus, barcodeID, areaID uuid.UUID, totalDistanceKm float64) *Order {
	o := &Order{
		id:              id,
		orderCode:       orderCode,
		smeID:           smeID,
		receiverName:    receiverName,
		receiverPhone:   receiverPhone,
		receiverAddress: receiverAddress,
		receiverLat:     receiverLat,
		receiverLon:     receiverLon,
		weight:          weight,
		barcodeID:       barcodeID,
		areaID:          areaID,
		totalDistanceKm: totalDistanceKm,
	}
	o.fsm = fsm.New(fsm.State(status.String()))
	o.addTransitionRules()

	return o
}

func (o *Order) addTransitionRules() {
	f := o.fsm
	f.AddTransitionRule(fsm.State(OrderStatusPending.String()), EventPickupConfirm, fsm.State(OrderStatusInTransit.String()))
	f.AddTransitionRule(fsm.State(OrderStatusPending.String()), EventCancel, fsm.State(OrderStatusCancelled.String()))

	f.AddTransitionRule(fsm.State(OrderStatusInTransit.String()), EventWarehouseIn, fsm.State(OrderStatusAtWarehouse.String()))

	f.AddTransitionRule(fsm.State(OrderStatusAtWarehouse.String()), EventWarehouseOut, fsm.State(OrderStatusInTransit.String()))
	// Two-leg journeys (entry hub == exit satellite) go straight from the
	// warehouse drop to delivery start, skipping a transfer leg entirely.
	f.AddTransitionRule(fsm.State(OrderStatusAtWarehouse.String()), EventDeliveryStart, fsm.State(OrderStatusDelivering.String()))
	// Three-leg journeys pass WAREHOUSE_OUT (back to IN_TRANSIT) and a
	// second WAREHOUSE_IN at the exit satellite, so they also reach
	// delivery start from AT_WAREHOUSE through the rule above. The rule
	// below additionally allows delivery start directly from IN_TRANSIT.
	f.AddTransitionRule(fsm.State(OrderStatusInTransit.String()), EventDeliveryStart, fsm.State(OrderStatusDelivering.String()))

	f.AddTransitionRule(fsm.State(OrderStatusDelivering.String()), EventDeliveryComplete, fsm.State(OrderStatusCompleted.String()))
}

func (o *Order) ID() uuid.UUID        { return o.id }
func (o *Order) OrderCode() string    { return o.orderCode }
func (o *Order) SmeID() uuid.UUID     { return o.smeID }
func (o *Order) ReceiverName() string  { return o.receiverName }
func (o *Order) ReceiverPhone() string { return o.receiverPhone }
func (o *Order) ReceiverAddress() string { return o.receiverAddress }
func (o *Order) Weight() float64      { return o.weight }
func (o *Order) BarcodeID() uuid.UUID { return o.barcodeID }
func (o *Order) AreaID() uuid.UUID    { return o.areaID }

func (o *Order) Status() OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return OrderStatus(o.fsm.GetCurrentState().String())
}

func (o *Order) HasReceiverCoordinates() bool {
	return o.receiverLat != nil && o.receiverLon != nil
}

func (o *Order) ReceiverCoordinates() (lat, lon float64, ok bool) {
	if !o.HasReceiverCoordinates() {
		return 0, 0, false
	}
	return *o.receiverLat, *o.receiverLon, true
}

func (o *Order) SetReceiverCoordinates(lat, lon float64) {
	o.receiverLat = &lat
	o.receiverLon = &lon
}

func (o *Order) TotalDistanceKm() float64 { return o.totalDistanceKm }

func (o *Order) SetTotalDistanceKm(km float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.totalDistanceKm = km
}

// GetDomainEvents returns a copy of events raised so far.
func (o *Order) GetDomainEvents() []DomainEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]DomainEvent, len(o.domainEvents))
	copy(out, o.domainEvents)
	return out
}

// ClearDomainEvents clears the event buffer; called by the application
// layer after publishing.
func (o *Order) ClearDomainEvents() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.domainEvents = o.domainEvents[:0]
}

func (o *Order) addEvent(e DomainEvent) {
	o.domainEvents = append(o.domainEvents, e)
}

// transition triggers the FSM and raises an OrderStatusChangedEvent,
// shared by every action (spec.md §4.5).
func (o *Order) transition(ctx context.Context, event fsm.Event, eventName string, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	from := OrderStatus(o.fsm.GetCurrentState().String())
	if from.Terminal() {
		return &ErrOrderTerminalState{Status: from}
	}

	if err := o.fsm.TriggerEvent(ctx, event); err != nil {
		return &ErrInvalidOrderTransition{From: from, Event: eventName}
	}

	to := OrderStatus(o.fsm.GetCurrentState().String())
	o.addEvent(OrderStatusChangedEvent{OrderID: o.id.String(), From: from, To: to, Occurred: now})

	return nil
}

// MarkPickupConfirmed is the order-level effect of scan action
// PICKUP_CONFIRM: PENDING -> IN_TRANSIT.
func (o *Order) MarkPickupConfirmed(ctx context.Context, now time.Time) error {
	return o.transition(ctx, EventPickupConfirm, "PICKUP_CONFIRM", now)
}

// MarkAtWarehouse is the order-level effect of scan action WAREHOUSE_IN:
// IN_TRANSIT -> AT_WAREHOUSE.
func (o *Order) MarkAtWarehouse(ctx context.Context, now time.Time) error {
	return o.transition(ctx, EventWarehouseIn, "WAREHOUSE_IN", now)
}

// MarkInTransitAgain is the order-level effect of scan action
// WAREHOUSE_OUT: AT_WAREHOUSE -> IN_TRANSIT.
func (o *Order) MarkInTransitAgain(ctx context.Context, now time.Time) error {
	return o.transition(ctx, EventWarehouseOut, "WAREHOUSE_OUT", now)
}

// MarkDelivering is the order-level effect of scan action DELIVERY_START:
// (IN_TRANSIT|AT_WAREHOUSE) -> DELIVERING.
func (o *Order) MarkDelivering(ctx context.Context, now time.Time) error {
	return o.transition(ctx, EventDeliveryStart, "DELIVERY_START", now)
}

// MarkCompleted is the order-level effect of scan action
// DELIVERY_COMPLETE: DELIVERING -> COMPLETED.
func (o *Order) MarkCompleted(ctx context.Context, now time.Time) error {
	return o.transition(ctx, EventDeliveryComplete, "DELIVERY_COMPLETE", now)
}

// Cancel transitions PENDING -> CANCELLED. Callers must verify no leg has
// started before calling this (the FSM only allows it from PENDING).
func (o *Order) Cancel(ctx context.Context, now time.Time) error {
	return o.transition(ctx, EventCancel, "CANCEL", now)
}
