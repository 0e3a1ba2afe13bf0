package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// RoleAssignHandler implements the role-scoped convenience entry points:
// attach a courier to a specific leg by (order_id, leg_type) (spec.md
// §4.4 "Role-scoped assignments").
type RoleAssignHandler struct {
	log      logger.Logger
	uow      ports.UnitOfWork
	orders   ports.OrderRepository
	legs     ports.LegRepository
	couriers ports.CourierRepository
}

// NewRoleAssignHandler constructs a RoleAssignHandler.
func NewRoleAssignHandler(
	log logger.Logger,
	uow ports.UnitOfWork,
	orders ports.OrderRepository,
	legs ports.LegRepository,
	couriers ports.CourierRepository,
) *RoleAssignHandler {
	return &RoleAssignHandler{log: log, uow: uow, orders: orders, legs: legs, couriers: couriers}
}

// AssignTransfer attaches courierID to orderID's TRANSFER leg. Requires
// vehicle ∈ {TRUCK, CAR} (spec.md §4.4).
func (h *RoleAssignHandler) AssignTransfer(ctx context.Context, orderID, courierID uuid.UUID) error {
	return h.assign(ctx, orderID, courierID, journey.LegTypeTransfer)
}

// AssignDelivery attaches courierID to orderID's DELIVERY leg.
func (h *RoleAssignHandler) AssignDelivery(ctx context.Context, orderID, courierID uuid.UUID) error {
	return h.assign(ctx, orderID, courierID, journey.LegTypeDelivery)
}

func (h *RoleAssignHandler) assign(ctx context.Context, orderID, courierID uuid.UUID, legType journey.LegType) error {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("dispatch: begin transaction: %w", err)
	}
	defer func() { _ = h.uow.Rollback(ctx) }()

	if _, err := h.orders.LoadForUpdate(ctx, orderID); err != nil {
		return err
	}

	legs, err := h.legs.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	var target *journey.Leg
	for _, l := range legs {
		if l.Type() == legType {
			target = l
			break
		}
	}
	if target == nil {
		return ports.ErrNotFound
	}
	if target.Status() != journey.LegStatusPending {
		return &ErrLegCompleted{LegID: target.ID().String(), Status: target.Status().String()}
	}

	c, err := h.couriers.GetForUpdate(ctx, courierID)
	if err != nil {
		return err
	}
	if !c.Vehicle().CompatibleWithLeg(legType.String()) {
		return &ErrIncompatibleVehicle{Vehicle: c.Vehicle().String(), LegType: legType.String()}
	}

	target.SetAssignedCourier(&courierID)
	if err := h.legs.Save(ctx, target); err != nil {
		return err
	}

	if c.Status() != courier.StatusDelivering {
		if err := c.AssignFirstLeg(ctx); err != nil {
			return err
		}
		if err := h.couriers.Save(ctx, c); err != nil {
			return err
		}
	}

	return h.uow.Commit(ctx)
}
