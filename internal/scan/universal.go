package scan

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// UniversalRequest is the input to ExecuteUniversal: a single endpoint
// where the server infers the action from order+leg state and actor role
// (spec.md §4.5 "A universal scan variant", §6 POST /journey/scan).
type UniversalRequest struct {
	CodeValue   string
	ActorID     uuid.UUID
	ActorRole   Role
	ActorVehicle string // courier vehicle, e.g. "TRUCK"; empty for staff
	WarehouseID *uuid.UUID
	Note        string
}

// ExecuteUniversal infers the action from the earliest non-COMPLETED leg
// and fires the role-appropriate START/FINISH transition.
func (m *Machine) ExecuteUniversal(ctx context.Context, req UniversalRequest) (Result, error) {
	now := nowFn()

	bc, err := m.barcodes.FindByCodeValue(ctx, req.CodeValue)
	if err != nil || !bc.Active() {
		return Result{}, ErrBarcodeNotFound
	}

	order, err := m.orders.Load(ctx, bc.OrderID())
	if err != nil {
		return Result{}, err
	}

	legs, err := m.legs.ListByOrder(ctx, order.ID())
	if err != nil {
		return Result{}, err
	}

	leg := journey.EarliestNonCompleted(legs)
	if leg == nil {
		return Result{}, &ErrNoMatchingLeg{Action: "universal", Reason: "all legs are already completed or cancelled"}
	}

	action, err := inferAction(leg, req.ActorRole, req.ActorVehicle)
	if err != nil {
		return Result{}, err
	}

	explicit := Request{
		CodeValue:   req.CodeValue,
		Action:      action,
		ActorID:     req.ActorID,
		ActorRole:   req.ActorRole,
		WarehouseID: req.WarehouseID,
		Note:        req.Note,
	}

	if cached, ok := m.idempotency.get(req.CodeValue, string(action), req.ActorID.String(), now); ok {
		return cached, nil
	}

	res, execErr := m.execute(ctx, explicit, now)

	m.recordEvent(ctx, explicit, res, execErr)

	if execErr == nil {
		m.idempotency.set(req.CodeValue, string(action), req.ActorID.String(), now, res)
	}

	return res, execErr
}

// inferAction maps (leg type, leg status) to the START/FINISH action it
// expects, honoring the role restrictions in spec.md §4.5: staff cannot
// START a PICKUP or DELIVERY leg; couriers cannot START a TRANSFER leg
// unless their vehicle is truck.
func inferAction(leg *journey.Leg, role Role, vehicle string) (Action, error) {
	starting := leg.Status() == journey.LegStatusPending

	switch leg.Type() {
	case journey.LegTypePickup:
		if starting {
			if role != RoleCourier {
				return "", &ErrNotAssigned{Reason: "staff cannot start a PICKUP leg"}
			}
			return ActionPickupConfirm, nil
		}
		if role != RoleWarehouseStaff {
			return "", &ErrNotAssigned{Reason: "only warehouse staff complete a PICKUP leg"}
		}
		return ActionWarehouseIn, nil

	case journey.LegTypeTransfer:
		if starting {
			if role == RoleCourier && vehicle != "TRUCK" {
				return "", &ErrNotAssigned{Reason: "couriers cannot start a TRANSFER leg unless their vehicle is truck"}
			}
			return ActionWarehouseOut, nil
		}
		return ActionWarehouseIn, nil

	case journey.LegTypeDelivery:
		if starting {
			if role != RoleCourier {
				return "", &ErrNotAssigned{Reason: "staff cannot start a DELIVERY leg"}
			}
			return ActionDeliveryStart, nil
		}
		if role != RoleCourier {
			return "", &ErrNotAssigned{Reason: "only couriers complete a DELIVERY leg"}
		}
		return ActionDeliveryComplete, nil

	default:
		return "", &ports.ValidationError{Field: "leg_type", Reason: fmt.Sprintf("unknown leg type %q", leg.Type())}
	}
}
