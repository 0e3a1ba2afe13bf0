package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/planner"
)

// ManualAssignCommand attaches a pickup courier (and optionally a
// delivery courier) to a freshly planned journey (spec.md §4.4 "Manual
// assignment").
type ManualAssignCommand struct {
	OrderID          uuid.UUID
	PickupCourierID  uuid.UUID
	EntryHubID       uuid.UUID
	ExitSatelliteID  uuid.UUID
	DeliveryCourierID *uuid.UUID
}

// ManualAssignHandler executes ManualAssignCommand.
type ManualAssignHandler struct {
	log      logger.Logger
	uow      ports.UnitOfWork
	orders   ports.OrderRepository
	legs     ports.LegRepository
	couriers ports.CourierRepository
	smes     ports.SMERepository
	planner  *planner.Planner
	publish  ports.EventPublisher
}

// NewManualAssignHandler constructs a ManualAssignHandler.
func NewManualAssignHandler(
	log logger.Logger,
	uow ports.UnitOfWork,
	orders ports.OrderRepository,
	legs ports.LegRepository,
	couriers ports.CourierRepository,
	smes ports.SMERepository,
	pl *planner.Planner,
	publish ports.EventPublisher,
) *ManualAssignHandler {
	return &ManualAssignHandler{
		log: log, uow: uow, orders: orders, legs: legs,
		couriers: couriers, smes: smes, planner: pl, publish: publish,
	}
}

// Handle performs manual assignment (spec.md §4.4).
func (h *ManualAssignHandler) Handle(ctx context.Context, cmd ManualAssignCommand) error {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("dispatch: begin transaction: %w", err)
	}
	defer func() { _ = h.uow.Rollback(ctx) }()

	order, err := h.orders.LoadForUpdate(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	switch order.Status() {
	case journey.OrderStatusPending, journey.OrderStatusInTransit:
	default:
		return &ports.InvalidStateError{Reason: fmt.Sprintf("order %s not assignable from status %s", cmd.OrderID, order.Status())}
	}

	existingLegs, err := h.legs.ListByOrder(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if len(existingLegs) > 0 {
		return ErrLegsAlreadyExist
	}

	sme, err := h.smes.Get(ctx, order.SmeID())
	if err != nil {
		return err
	}
	smeLat, smeLon, ok := sme.Coordinates()
	if !ok {
		return &ports.ValidationError{Field: "sme.coordinates", Reason: "sme has no coordinates"}
	}

	pickupCourier, err := h.couriers.GetForUpdate(ctx, cmd.PickupCourierID)
	if err != nil {
		return err
	}
	if !pickupAvailable(pickupCourier.Status()) {
		return &ErrCourierUnavailable{CourierID: cmd.PickupCourierID.String(), Status: pickupCourier.Status().String()}
	}
	if !pickupCourier.Vehicle().CompatibleWithLeg(journey.LegTypePickup.String()) {
		return &ErrIncompatibleVehicle{Vehicle: pickupCourier.Vehicle().String(), LegType: journey.LegTypePickup.String()}
	}

	var deliveryCourier *courier.Courier
	if cmd.DeliveryCourierID != nil {
		deliveryCourier, err = h.couriers.GetForUpdate(ctx, *cmd.DeliveryCourierID)
		if err != nil {
			return err
		}
		if !deliveryCourier.Vehicle().CompatibleWithLeg(journey.LegTypeDelivery.String()) {
			return &ErrIncompatibleVehicle{Vehicle: deliveryCourier.Vehicle().String(), LegType: journey.LegTypeDelivery.String()}
		}
	}

	result, err := h.planner.PlanWithEndpoints(ctx, order, cmd.EntryHubID, cmd.ExitSatelliteID, smeLat, smeLon, uuid.New)
	if err != nil {
		return err
	}

	pickupLeg := result.Legs[0]
	pickupLeg.SetAssignedCourier(&cmd.PickupCourierID)

	deliveryLeg := result.Legs[len(result.Legs)-1]
	if cmd.DeliveryCourierID != nil {
		deliveryLeg.SetAssignedCourier(cmd.DeliveryCourierID)
	}

	if err := h.legs.SaveAll(ctx, result.Legs); err != nil {
		return err
	}

	order.SetTotalDistanceKm(result.TotalDistanceKm)
	if order.Status() == journey.OrderStatusPending {
		if err := order.MarkPickupConfirmed(ctx, nowFn()); err != nil {
			return err
		}
	}
	if err := h.orders.Save(ctx, order); err != nil {
		return err
	}

	if pickupCourier.Status() != courier.StatusDelivering {
		if err := pickupCourier.AssignFirstLeg(ctx); err != nil {
			return err
		}
	}
	if err := h.couriers.Save(ctx, pickupCourier); err != nil {
		return err
	}

	if deliveryCourier != nil && deliveryCourier.ID() != pickupCourier.ID() && deliveryCourier.Status() != courier.StatusDelivering {
		if err := deliveryCourier.AssignFirstLeg(ctx); err != nil {
			return err
		}
		if err := h.couriers.Save(ctx, deliveryCourier); err != nil {
			return err
		}
	}

	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("dispatch: commit transaction: %w", err)
	}

	for _, ev := range order.GetDomainEvents() {
		if perr := h.publish.Publish(ctx, ev); perr != nil {
			h.log.Warn("failed to publish order event", "error", perr)
		}
	}
	order.ClearDomainEvents()

	return nil
}

// pickupAvailable mirrors spec.md §4.4's "pickup courier status ∈
// {ONLINE, IDLE}" precondition; this domain has no IDLE status, so
// ONLINE is the sole accepted state.
func pickupAvailable(status courier.Status) bool {
	return status == courier.StatusOnline
}
