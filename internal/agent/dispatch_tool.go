package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/dispatch"
	"github.com/parcelhub/dispatch-engine/internal/incident"
)

// Dispatch validates the tool name and routes to the corresponding pure
// Engine method, feeding the JSON-decoded arguments through (spec.md
// §4.6 "the agent validates the tool name, dispatches to the
// corresponding pure function, and feeds the result back").
func (e *Engine) Dispatch(ctx context.Context, call ToolCall) (any, error) {
	switch call.Name {
	case ToolGetPendingOrders:
		var args struct {
			AreaID uuid.UUID `json:"area_id"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		orders, err := e.GetPendingOrders(ctx, args.AreaID)
		if err != nil {
			return nil, err
		}
		if len(orders) == 0 {
			return SkipPhase1Prefix + "no pending orders with geocoded endpoints", nil
		}
		return orders, nil

	case ToolGetAvailableShippers:
		var args struct {
			AreaID uuid.UUID `json:"area_id"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		return e.GetAvailableShippers(ctx, args.AreaID)

	case ToolFindNearestShippers:
		var args struct {
			OrderID uuid.UUID `json:"order_id"`
			AreaID  uuid.UUID `json:"area_id"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		pending, err := e.GetPendingOrders(ctx, args.AreaID)
		if err != nil {
			return nil, err
		}
		var target *PendingOrder
		for i := range pending {
			if pending[i].OrderID == args.OrderID {
				target = &pending[i]
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("agent: order %s not pending in area %s", args.OrderID, args.AreaID)
		}
		candidates, err := e.GetAvailableShippers(ctx, args.AreaID)
		if err != nil {
			return nil, err
		}
		return e.FindNearestShippers(*target, candidates), nil

	case ToolProcessBatchAssignments:
		var args struct {
			Pairs []struct {
				OrderID   uuid.UUID `json:"order_id"`
				CourierID uuid.UUID `json:"courier_id"`
			} `json:"pairs"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		pairs := make([]dispatch.BatchPair, 0, len(args.Pairs))
		for _, p := range args.Pairs {
			pairs = append(pairs, dispatch.BatchPair{OrderID: p.OrderID, CourierID: p.CourierID})
		}
		return e.ProcessBatchAssignments(ctx, pairs), nil

	case ToolRebalanceShippers:
		var args struct {
			AreaID uuid.UUID `json:"area_id"`
			MaxKm  float64   `json:"max_km"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		return e.RebalanceShippers(ctx, args.AreaID, args.MaxKm)

	case ToolGetAreaTransferQueue:
		var args struct {
			AreaID uuid.UUID `json:"area_id"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		legs, err := e.GetAreaTransferQueue(ctx, args.AreaID)
		if err != nil {
			return nil, err
		}
		if len(legs) == 0 {
			return "area transfer queue empty", nil
		}
		return legs, nil

	case ToolGetHubTransferQueue:
		var args struct {
			HubID  uuid.UUID `json:"hub_id"`
			AreaID uuid.UUID `json:"area_id"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		return e.GetHubTransferQueue(ctx, args.AreaID, args.HubID)

	case ToolGetTrucksInArea:
		var args struct {
			AreaID uuid.UUID `json:"area_id"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		return e.GetTrucksInArea(ctx, args.AreaID)

	case ToolAssignBatchToTruck:
		var args struct {
			TruckCourierID uuid.UUID   `json:"truck_courier_id"`
			LegIDs         []uuid.UUID `json:"leg_ids"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		return e.AssignBatchToTruck(ctx, args.TruckCourierID, args.LegIDs)

	case ToolOptimizeHubRouting:
		var args struct {
			HubID  uuid.UUID `json:"hub_id"`
			AreaID uuid.UUID `json:"area_id"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		return e.OptimizeHubRouting(ctx, args.HubID, args.AreaID)

	case ToolReportIncident:
		var args struct {
			CourierID uuid.UUID `json:"courier_id"`
			Message   string    `json:"message"`
			Latitude  float64   `json:"latitude"`
			Longitude float64   `json:"longitude"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, err
		}
		return e.ReportIncident(ctx, incident.Report{
			CourierID: args.CourierID, Description: args.Message,
			CurrentLat: args.Latitude, CurrentLon: args.Longitude,
		})

	default:
		return nil, fmt.Errorf("agent: unknown tool %q", call.Name)
	}
}
