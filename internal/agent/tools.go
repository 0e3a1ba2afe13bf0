// Package agent implements the Optimization Agent (C6): a periodic
// control loop that, per ACTIVE area, runs first-mile matching,
// middle-mile consolidation, and rebalancing (spec.md §4.6). Its actions
// are exposed as named tools a host LM runtime selects between; per
// spec.md §9's design note, tools are modeled as a tagged variant
// over typed argument structs rather than dynamic name lookup, with a
// thin JSON adapter (ToolCall/Dispatch) for the LM-facing surface.
package agent

import "encoding/json"

// Tool names are part of the wire contract: the LM references them by
// name (spec.md §4.6, §6).
const (
	ToolGetPendingOrders        = "get_pending_orders"
	ToolGetAvailableShippers    = "get_available_shippers"
	ToolFindNearestShippers     = "find_nearest_shippers"
	ToolProcessBatchAssignments = "process_batch_assignments"
	ToolRebalanceShippers       = "rebalance_shippers"
	ToolGetAreaTransferQueue    = "get_area_transfer_queue"
	ToolGetHubTransferQueue     = "get_hub_transfer_queue"
	ToolGetTrucksInArea         = "get_trucks_in_area"
	ToolAssignBatchToTruck      = "assign_batch_to_truck"
	ToolOptimizeHubRouting      = "optimize_hub_routing"
	ToolReportIncident          = "report_incident"
)

// SkipPhase1Prefix is the sentinel observation returned when Phase 1 has no
// pending orders to match (spec.md §6 "notably the sentinel
// SKIP_PHASE_1: ...").
const SkipPhase1Prefix = "SKIP_PHASE_1: "

// ToolCall is one LM-selected tool invocation: a name plus raw JSON
// arguments, the thin adapter spec.md §9 calls for.
type ToolCall struct {
	Name string
	Args json.RawMessage
}

// ToolDefinitions returns the JSON-schema tool definitions for the LM
// function-calling request (spec.md §6 "Tool schema for the agent loop").
func ToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{Name: ToolGetPendingOrders, Description: "List pending orders in an area with geocoded SME and receiver.", Parameters: objSchema(map[string]any{
			"area_id": strProp("area UUID"),
		}, "area_id")},
		{Name: ToolGetAvailableShippers, Description: "List online motorbike couriers in an area.", Parameters: objSchema(map[string]any{
			"area_id": strProp("area UUID"),
		}, "area_id")},
		{Name: ToolFindNearestShippers, Description: "Find the nearest couriers to an order within 15km, sorted ascending.", Parameters: objSchema(map[string]any{
			"order_id": strProp("order UUID"),
			"area_id":  strProp("area UUID"),
		}, "order_id", "area_id")},
		{Name: ToolProcessBatchAssignments, Description: "Commit a batch of (order_id, courier_id) pairs via manual/batch dispatch.", Parameters: objSchema(map[string]any{
			"pairs": map[string]any{"type": "array", "items": objSchema(map[string]any{
				"order_id":   strProp("order UUID"),
				"courier_id": strProp("courier UUID"),
			}, "order_id", "courier_id")},
		}, "pairs")},
		{Name: ToolRebalanceShippers, Description: "Move idle online motorbike couriers from quiet neighboring areas into an overloaded area.", Parameters: objSchema(map[string]any{
			"area_id": strProp("overloaded area UUID"),
			"max_km":  map[string]any{"type": "number", "description": "neighbor search radius in km"},
		}, "area_id", "max_km")},
		{Name: ToolGetAreaTransferQueue, Description: "List TRANSFER/PENDING legs in the area whose preceding PICKUP is COMPLETED.", Parameters: objSchema(map[string]any{
			"area_id": strProp("area UUID"),
		}, "area_id")},
		{Name: ToolGetHubTransferQueue, Description: "List TRANSFER/PENDING legs originating at a specific hub.", Parameters: objSchema(map[string]any{
			"hub_id":  strProp("hub warehouse UUID"),
			"area_id": strProp("area UUID"),
		}, "hub_id", "area_id")},
		{Name: ToolGetTrucksInArea, Description: "List TRUCK couriers assigned to the area.", Parameters: objSchema(map[string]any{
			"area_id": strProp("area UUID"),
		}, "area_id")},
		{Name: ToolAssignBatchToTruck, Description: "Assign a batch of pending transfer legs to a truck courier.", Parameters: objSchema(map[string]any{
			"truck_courier_id": strProp("truck courier UUID"),
			"leg_ids":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		}, "truck_courier_id", "leg_ids")},
		{Name: ToolOptimizeHubRouting, Description: "Report hub-level queue depth so the model can decide whether more truck capacity is needed.", Parameters: objSchema(map[string]any{
			"hub_id":  strProp("hub warehouse UUID"),
			"area_id": strProp("area UUID"),
		}, "hub_id", "area_id")},
		{Name: ToolReportIncident, Description: "Reassign a courier's live legs to the nearest available peer after an incident.", Parameters: objSchema(map[string]any{
			"courier_id": strProp("reporting courier UUID"),
			"message":    map[string]any{"type": "string"},
			"latitude":   map[string]any{"type": "number"},
			"longitude":  map[string]any{"type": "number"},
		}, "courier_id", "message", "latitude", "longitude")},
	}
}

// ToolDefinition is a transport-agnostic description of one tool; the
// OpenAI adapter (internal/agent/loop.go) converts this into
// openai.FunctionDefinition.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

func objSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func strProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}
