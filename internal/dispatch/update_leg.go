package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// LegPatch is a partial update to a single PENDING leg (spec.md §4.4
// "Update-leg"). Nil fields are left unchanged.
type LegPatch struct {
	AssignedCourierID      *uuid.UUID
	ClearCourier           bool
	OriginWarehouseID      *uuid.UUID
	DestinationWarehouseID *uuid.UUID
	Status                 *journey.LegStatus
}

// UpdateLegHandler executes LegPatch against a single leg.
type UpdateLegHandler struct {
	log        logger.Logger
	uow        ports.UnitOfWork
	orders     ports.OrderRepository
	legs       ports.LegRepository
	couriers   ports.CourierRepository
	smes       ports.SMERepository
	warehouses ports.WarehouseRepository
	routing    ports.RoutingProvider
}

// NewUpdateLegHandler constructs an UpdateLegHandler.
func NewUpdateLegHandler(
	log logger.Logger,
	uow ports.UnitOfWork,
	orders ports.OrderRepository,
	legs ports.LegRepository,
	couriers ports.CourierRepository,
	smes ports.SMERepository,
	warehouses ports.WarehouseRepository,
	routing ports.RoutingProvider,
) *UpdateLegHandler {
	return &UpdateLegHandler{
		log: log, uow: uow, orders: orders, legs: legs,
		couriers: couriers, smes: smes, warehouses: warehouses, routing: routing,
	}
}

// Handle applies patch to legID (spec.md §4.4). Rejects updates to
// COMPLETED legs.
func (h *UpdateLegHandler) Handle(ctx context.Context, legID uuid.UUID, patch LegPatch) error {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("dispatch: begin transaction: %w", err)
	}
	defer func() { _ = h.uow.Rollback(ctx) }()

	leg, err := h.legs.Get(ctx, legID)
	if err != nil {
		return err
	}

	order, err := h.orders.LoadForUpdate(ctx, leg.OrderID())
	if err != nil {
		return err
	}

	if leg.Status() == journey.LegStatusCompleted {
		return &ErrLegCompleted{LegID: legID.String(), Status: leg.Status().String()}
	}

	var vehicleMode ports.VehicleMode = ports.VehicleModeBike // motorbike default (spec.md §4.4)

	if patch.ClearCourier {
		leg.SetAssignedCourier(nil)
	} else if patch.AssignedCourierID != nil {
		c, err := h.couriers.Get(ctx, *patch.AssignedCourierID)
		if err != nil {
			return err
		}
		if !c.Vehicle().CompatibleWithLeg(leg.Type().String()) {
			return &ErrIncompatibleVehicle{Vehicle: c.Vehicle().String(), LegType: leg.Type().String()}
		}
		leg.SetAssignedCourier(patch.AssignedCourierID)
		vehicleMode = vehicleModeOf(c.Vehicle().String())
	}

	endpointChanged := patch.OriginWarehouseID != nil || patch.DestinationWarehouseID != nil
	if endpointChanged {
		origin, dest, err := h.resolveEndpoints(ctx, leg, order, patch)
		if err != nil {
			return err
		}

		if patch.OriginWarehouseID != nil {
			leg.SetOriginWarehouseID(*patch.OriginWarehouseID)
		}
		if patch.DestinationWarehouseID != nil {
			leg.SetDestinationWarehouseID(*patch.DestinationWarehouseID)
		}

		km, err := h.routing.Distance(ctx, origin, dest, vehicleMode)
		if err != nil {
			h.log.Warn("recompute leg distance failed, recording null", "leg_id", legID, "error", err)
			leg.SetEstimatedDistanceKm(nil)
		} else {
			leg.SetEstimatedDistanceKm(&km)
		}
	}

	if patch.Status != nil {
		if err := h.applyStatus(ctx, leg, *patch.Status); err != nil {
			return err
		}
	}

	if err := h.legs.Save(ctx, leg); err != nil {
		return err
	}
	if err := h.orders.Save(ctx, order); err != nil {
		return err
	}

	return h.uow.Commit(ctx)
}

// resolveEndpoints looks up the coordinates for a leg's (possibly
// patched) origin and destination, used to recompute
// estimated_distance_km after an endpoint change.
func (h *UpdateLegHandler) resolveEndpoints(ctx context.Context, leg *journey.Leg, order *journey.Order, patch LegPatch) (origin, dest ports.Coordinate, err error) {
	switch {
	case patch.OriginWarehouseID != nil:
		w, werr := h.warehouses.Get(ctx, *patch.OriginWarehouseID)
		if werr != nil {
			return origin, dest, werr
		}
		origin = ports.Coordinate{Lat: w.Lat(), Lon: w.Lon()}
	case leg.OriginWarehouseID() != nil:
		w, werr := h.warehouses.Get(ctx, *leg.OriginWarehouseID())
		if werr != nil {
			return origin, dest, werr
		}
		origin = ports.Coordinate{Lat: w.Lat(), Lon: w.Lon()}
	case leg.OriginSmeID() != nil:
		s, serr := h.smes.Get(ctx, *leg.OriginSmeID())
		if serr != nil {
			return origin, dest, serr
		}
		lat, lon, ok := s.Coordinates()
		if !ok {
			return origin, dest, &ports.ValidationError{Field: "origin_sme_id", Reason: "sme has no coordinates"}
		}
		origin = ports.Coordinate{Lat: lat, Lon: lon}
	}

	switch {
	case patch.DestinationWarehouseID != nil:
		w, werr := h.warehouses.Get(ctx, *patch.DestinationWarehouseID)
		if werr != nil {
			return origin, dest, werr
		}
		dest = ports.Coordinate{Lat: w.Lat(), Lon: w.Lon()}
	case leg.DestinationWarehouseID() != nil:
		w, werr := h.warehouses.Get(ctx, *leg.DestinationWarehouseID())
		if werr != nil {
			return origin, dest, werr
		}
		dest = ports.Coordinate{Lat: w.Lat(), Lon: w.Lon()}
	case leg.DestinationIsReceiver():
		lat, lon, ok := order.ReceiverCoordinates()
		if !ok {
			return origin, dest, &ports.ValidationError{Field: "destination", Reason: "order receiver has no coordinates"}
		}
		dest = ports.Coordinate{Lat: lat, Lon: lon}
	}

	return origin, dest, nil
}

// applyStatus handles the Status field of a LegPatch. A transition to
// IN_PROGRESS requires an assigned courier (spec.md §4.4).
func (h *UpdateLegHandler) applyStatus(ctx context.Context, leg *journey.Leg, target journey.LegStatus) error {
	switch target {
	case journey.LegStatusInProgress:
		if leg.AssignedCourierID() == nil {
			return &ports.ValidationError{Field: "assigned_courier_id", Reason: "leg cannot start without an assigned courier"}
		}
		return leg.Start(ctx, nowFn())
	case journey.LegStatusCancelled:
		return leg.Cancel(ctx)
	default:
		return &ports.ValidationError{Field: "status", Reason: fmt.Sprintf("unsupported target status %s", target)}
	}
}

func vehicleModeOf(vehicle string) ports.VehicleMode {
	switch vehicle {
	case "TRUCK":
		return ports.VehicleModeTruck
	case "CAR":
		return ports.VehicleModeCar
	default:
		return ports.VehicleModeBike
	}
}
