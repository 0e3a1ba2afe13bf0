package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// nowFn is overridden in tests for deterministic timestamps.
var nowFn = time.Now

// Machine is the Scan State Machine (C5).
type Machine struct {
	log           logger.Logger
	uow           ports.UnitOfWork
	orders        ports.OrderRepository
	legs          ports.LegRepository
	barcodes      ports.BarcodeRepository
	couriers      ports.CourierRepository
	scanEvents    ports.ScanEventRepository
	notifications ports.NotificationSink
	idempotency   *idempotencyCache
}

// New constructs a Machine.
func New(
	log logger.Logger,
	uow ports.UnitOfWork,
	orders ports.OrderRepository,
	legs ports.LegRepository,
	barcodes ports.BarcodeRepository,
	couriers ports.CourierRepository,
	scanEvents ports.ScanEventRepository,
	notifications ports.NotificationSink,
) (*Machine, error) {
	idem, err := newIdempotencyCache()
	if err != nil {
		return nil, err
	}

	return &Machine{
		log: log, uow: uow, orders: orders, legs: legs, barcodes: barcodes,
		couriers: couriers, scanEvents: scanEvents, notifications: notifications,
		idempotency: idem,
	}, nil
}

// Close releases the idempotency cache.
func (m *Machine) Close() { m.idempotency.Close() }

// Execute runs req's explicit action against the barcode's order
// (spec.md §4.5, §6 POST /barcodes/scan).
func (m *Machine) Execute(ctx context.Context, req Request) (Result, error) {
	now := nowFn()

	if cached, ok := m.idempotency.get(req.CodeValue, string(req.Action), req.ActorID.String(), now); ok {
		return cached, nil
	}

	res, err := m.execute(ctx, req, now)

	m.recordEvent(ctx, req, res, err)

	if err == nil {
		m.idempotency.set(req.CodeValue, string(req.Action), req.ActorID.String(), now, res)
	}

	return res, err
}

func (m *Machine) recordEvent(ctx context.Context, req Request, res Result, execErr error) {
	ev := ports.ScanEvent{
		ID:          uuid.New(),
		OrderID:     res.OrderID,
		CodeValue:   req.CodeValue,
		Action:      string(req.Action),
		ActorID:     req.ActorID.String(),
		WarehouseID: req.WarehouseID,
		Success:     execErr == nil,
	}
	if execErr != nil {
		ev.Message = execErr.Error()
	} else {
		ev.Message = res.Message
	}

	if err := m.scanEvents.Append(ctx, ev); err != nil {
		m.log.Warn("failed to append scan event", "error", err)
	}
}

func (m *Machine) execute(ctx context.Context, req Request, now time.Time) (Result, error) {
	ctx, err := m.uow.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("scan: begin transaction: %w", err)
	}
	defer func() { _ = m.uow.Rollback(ctx) }()

	bc, err := m.barcodes.FindByCodeValue(ctx, req.CodeValue)
	if err != nil {
		return Result{}, ErrBarcodeNotFound
	}
	if !bc.Active() {
		return Result{}, ErrBarcodeNotFound
	}

	order, err := m.orders.LoadForUpdate(ctx, bc.OrderID())
	if err != nil {
		return Result{}, err
	}

	legs, err := m.legs.ListByOrder(ctx, order.ID())
	if err != nil {
		return Result{}, err
	}

	var res Result
	switch req.Action {
	case ActionPickupConfirm:
		res, err = m.pickupConfirm(ctx, req, order, legs, now)
	case ActionWarehouseIn:
		res, err = m.warehouseIn(ctx, req, order, legs, now)
	case ActionWarehouseOut:
		res, err = m.warehouseOut(ctx, req, order, legs, now)
	case ActionDeliveryStart:
		res, err = m.deliveryStart(ctx, req, order, legs, now)
	case ActionDeliveryComplete:
		res, err = m.deliveryComplete(ctx, req, order, legs, now)
	default:
		return Result{}, &ports.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q", req.Action)}
	}

	res.OrderID = order.ID()
	res.OrderCode = order.OrderCode()

	if err != nil {
		return res, err
	}

	if err := m.orders.Save(ctx, order); err != nil {
		return res, err
	}

	if err := m.uow.Commit(ctx); err != nil {
		return res, fmt.Errorf("scan: commit transaction: %w", err)
	}

	return res, nil
}

// findLeg returns the first leg matching pred, or nil.
func findLeg(legs []*journey.Leg, pred func(*journey.Leg) bool) *journey.Leg {
	for _, l := range legs {
		if pred(l) {
			return l
		}
	}
	return nil
}

// pickupConfirm is action 1 (spec.md §4.5): find leg (order, PICKUP,
// PENDING); require assigned courier == actor; IN_PROGRESS; order ->
// IN_TRANSIT (left as is when assignment already moved it there).
func (m *Machine) pickupConfirm(ctx context.Context, req Request, order *journey.Order, legs []*journey.Leg, now time.Time) (Result, error) {
	if req.ActorRole != RoleCourier {
		return Result{}, &ErrNotAssigned{ActorID: req.ActorID.String(), Reason: "only couriers confirm pickup"}
	}

	leg := findLeg(legs, func(l *journey.Leg) bool {
		return l.Type() == journey.LegTypePickup && l.Status() == journey.LegStatusPending
	})
	if leg == nil {
		return Result{}, &ErrNoMatchingLeg{Action: string(ActionPickupConfirm), Reason: "no pending pickup leg"}
	}
	if leg.AssignedCourierID() == nil || *leg.AssignedCourierID() != req.ActorID {
		return Result{}, &ErrNotAssigned{ActorID: req.ActorID.String(), Reason: "pickup leg assigned to a different courier"}
	}

	if err := leg.Start(ctx, now); err != nil {
		return Result{}, err
	}
	if err := m.legs.Save(ctx, leg); err != nil {
		return Result{}, err
	}
	if order.Status() == journey.OrderStatusPending {
		if err := order.MarkPickupConfirmed(ctx, now); err != nil {
			return Result{}, err
		}
	}

	return Result{Success: true, Message: "pickup confirmed", Action: ActionPickupConfirm}, nil
}

// warehouseIn is action 2 (spec.md §4.5): find a leg whose status =
// IN_PROGRESS and destination_warehouse_id == warehouse_id; COMPLETED;
// order -> AT_WAREHOUSE. If none found, still AT_WAREHOUSE with a
// warning (accepts an unplanned drop).
func (m *Machine) warehouseIn(ctx context.Context, req Request, order *journey.Order, legs []*journey.Leg, now time.Time) (Result, error) {
	if req.ActorRole != RoleWarehouseStaff {
		return Result{}, &ErrNotAssigned{ActorID: req.ActorID.String(), Reason: "only warehouse staff scan WAREHOUSE_IN"}
	}
	if req.WarehouseID == nil {
		return Result{}, &ports.ValidationError{Field: "warehouse_id", Reason: "required for WAREHOUSE_IN"}
	}

	leg := findLeg(legs, func(l *journey.Leg) bool {
		return l.Status() == journey.LegStatusInProgress && l.DestinationWarehouseID() != nil && *l.DestinationWarehouseID() == *req.WarehouseID
	})

	if leg == nil {
		m.log.Warn("WAREHOUSE_IN accepted an unplanned drop", "order_id", order.ID(), "warehouse_id", *req.WarehouseID)
		if err := order.MarkAtWarehouse(ctx, now); err != nil {
			return Result{}, err
		}
		return Result{Success: true, Message: "unplanned drop accepted", Action: ActionWarehouseIn, CurrentWarehouse: req.WarehouseID}, nil
	}

	if err := journey.CanCompleteLeg(leg, legs); err != nil {
		return Result{}, err
	}
	if err := leg.Finish(ctx, now); err != nil {
		return Result{}, err
	}
	if err := m.legs.Save(ctx, leg); err != nil {
		return Result{}, err
	}
	if err := order.MarkAtWarehouse(ctx, now); err != nil {
		return Result{}, err
	}

	return Result{Success: true, Message: "arrived at warehouse", Action: ActionWarehouseIn, CurrentWarehouse: req.WarehouseID}, nil
}

// warehouseOut is action 3 (spec.md §4.5): find (order, TRANSFER,
// PENDING) with origin_warehouse_id == warehouse_id; IN_PROGRESS; order
// -> IN_TRANSIT.
func (m *Machine) warehouseOut(ctx context.Context, req Request, order *journey.Order, legs []*journey.Leg, now time.Time) (Result, error) {
	if req.ActorRole != RoleWarehouseStaff {
		return Result{}, &ErrNotAssigned{ActorID: req.ActorID.String(), Reason: "only warehouse staff scan WAREHOUSE_OUT"}
	}
	if req.WarehouseID == nil {
		return Result{}, &ports.ValidationError{Field: "warehouse_id", Reason: "required for WAREHOUSE_OUT"}
	}

	leg := findLeg(legs, func(l *journey.Leg) bool {
		return l.Type() == journey.LegTypeTransfer && l.Status() == journey.LegStatusPending && l.OriginWarehouseID() != nil && *l.OriginWarehouseID() == *req.WarehouseID
	})
	if leg == nil {
		return Result{}, &ErrWrongWarehouse{Expected: "transfer origin", Actual: req.WarehouseID.String()}
	}

	if err := leg.Start(ctx, now); err != nil {
		return Result{}, err
	}
	if err := m.legs.Save(ctx, leg); err != nil {
		return Result{}, err
	}
	if err := order.MarkInTransitAgain(ctx, now); err != nil {
		return Result{}, err
	}

	return Result{Success: true, Message: "departed warehouse", Action: ActionWarehouseOut, CurrentWarehouse: req.WarehouseID}, nil
}

// deliveryStart is action 4 (spec.md §4.5): find (order, DELIVERY,
// PENDING); atomically assign actor (if null) AND IN_PROGRESS; order ->
// DELIVERING. Reject if already assigned to a different courier.
func (m *Machine) deliveryStart(ctx context.Context, req Request, order *journey.Order, legs []*journey.Leg, now time.Time) (Result, error) {
	if req.ActorRole != RoleCourier {
		return Result{}, &ErrNotAssigned{ActorID: req.ActorID.String(), Reason: "only couriers start delivery"}
	}

	leg := findLeg(legs, func(l *journey.Leg) bool {
		return l.Type() == journey.LegTypeDelivery && l.Status() == journey.LegStatusPending
	})
	if leg == nil {
		return Result{}, &ErrNoMatchingLeg{Action: string(ActionDeliveryStart), Reason: "no pending delivery leg"}
	}
	if leg.AssignedCourierID() != nil && *leg.AssignedCourierID() != req.ActorID {
		return Result{}, &ErrNotAssigned{ActorID: req.ActorID.String(), Reason: "delivery leg already assigned to a different courier"}
	}

	if leg.AssignedCourierID() == nil {
		actor := req.ActorID
		leg.SetAssignedCourier(&actor)
	}
	if err := leg.Start(ctx, now); err != nil {
		return Result{}, err
	}
	if err := m.legs.Save(ctx, leg); err != nil {
		return Result{}, err
	}
	if err := order.MarkDelivering(ctx, now); err != nil {
		return Result{}, err
	}

	c, err := m.couriers.GetForUpdate(ctx, req.ActorID)
	if err == nil {
		if c.Status() != courier.StatusDelivering {
			if err := c.AssignFirstLeg(ctx); err == nil {
				_ = m.couriers.Save(ctx, c)
			}
		}
	}

	return Result{Success: true, Message: "delivery started", Action: ActionDeliveryStart}, nil
}

// deliveryComplete is action 5 (spec.md §4.5): find (order, DELIVERY,
// IN_PROGRESS); COMPLETED; order -> COMPLETED; courier -> ONLINE if no
// more non-terminal legs; enqueue "order delivered" notification.
func (m *Machine) deliveryComplete(ctx context.Context, req Request, order *journey.Order, legs []*journey.Leg, now time.Time) (Result, error) {
	if req.ActorRole != RoleCourier {
		return Result{}, &ErrNotAssigned{ActorID: req.ActorID.String(), Reason: "only couriers complete delivery"}
	}

	leg := findLeg(legs, func(l *journey.Leg) bool {
		return l.Type() == journey.LegTypeDelivery && l.Status() == journey.LegStatusInProgress
	})
	if leg == nil {
		return Result{}, &ErrNoMatchingLeg{Action: string(ActionDeliveryComplete), Reason: "no in-progress delivery leg"}
	}
	if leg.AssignedCourierID() == nil || *leg.AssignedCourierID() != req.ActorID {
		return Result{}, &ErrNotAssigned{ActorID: req.ActorID.String(), Reason: "delivery leg assigned to a different courier"}
	}

	if err := journey.CanCompleteLeg(leg, legs); err != nil {
		return Result{}, err
	}
	if err := leg.Finish(ctx, now); err != nil {
		return Result{}, err
	}
	if err := m.legs.Save(ctx, leg); err != nil {
		return Result{}, err
	}
	if err := order.MarkCompleted(ctx, now); err != nil {
		return Result{}, err
	}

	if err := m.releaseCourierIfIdle(ctx, req.ActorID); err != nil {
		m.log.Warn("failed to release courier after delivery complete", "courier_id", req.ActorID, "error", err)
	}

	if err := m.notifications.Push(ctx, order.SmeID().String(), "Order delivered", fmt.Sprintf("Order %s has been delivered.", order.OrderCode()), ports.NotificationOrderDelivered); err != nil {
		m.log.Warn("failed to push order-delivered notification", "order_id", order.ID(), "error", err)
	}

	return Result{Success: true, Message: "delivery completed", Action: ActionDeliveryComplete}, nil
}

// releaseCourierIfIdle transitions a courier DELIVERING -> ONLINE once it
// owns no more non-terminal legs (spec.md §3, §4.5 action 5).
func (m *Machine) releaseCourierIfIdle(ctx context.Context, courierID uuid.UUID) error {
	c, err := m.couriers.GetForUpdate(ctx, courierID)
	if err != nil {
		return err
	}
	if c.Status() != courier.StatusDelivering {
		return nil
	}

	active, err := m.legs.ListByCourier(ctx, courierID, []journey.LegStatus{journey.LegStatusPending, journey.LegStatusInProgress})
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return nil
	}

	if err := c.DropLastLeg(ctx); err != nil {
		return err
	}

	return m.couriers.Save(ctx, c)
}
