package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/dispatch"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// DispatchHandler serves spec.md §6 "Dispatch".
type DispatchHandler struct {
	manual      *dispatch.ManualAssignHandler
	batch       *dispatch.BatchAssignHandler
	role        *dispatch.RoleAssignHandler
	update      *dispatch.UpdateLegHandler
	del         *dispatch.DeleteLegHandler
	deleteOrder *dispatch.DeleteOrderHandler
	summary     *dispatch.SummaryHandler
	legs        ports.LegRepository
	couriers    ports.CourierRepository
}

// NewDispatchHandler constructs a DispatchHandler.
func NewDispatchHandler(
	manual *dispatch.ManualAssignHandler,
	batch *dispatch.BatchAssignHandler,
	role *dispatch.RoleAssignHandler,
	update *dispatch.UpdateLegHandler,
	del *dispatch.DeleteLegHandler,
	deleteOrder *dispatch.DeleteOrderHandler,
	summary *dispatch.SummaryHandler,
	legs ports.LegRepository,
	couriers ports.CourierRepository,
) *DispatchHandler {
	return &DispatchHandler{
		manual: manual, batch: batch, role: role, update: update,
		del: del, deleteOrder: deleteOrder, summary: summary, legs: legs, couriers: couriers,
	}
}

type assignShipperRequest struct {
	OrderID                uuid.UUID  `json:"order_id"`
	ShipperID              uuid.UUID  `json:"shipper_id"`
	DestinationHubID       uuid.UUID  `json:"destination_hub_id"`
	DestinationSatelliteID *uuid.UUID `json:"destination_satellite_id,omitempty"`
}

// AssignShipper handles POST /dispatch/assign-shipper.
func (h *DispatchHandler) AssignShipper(w http.ResponseWriter, r *http.Request) {
	var req assignShipperRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &ports.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	cmd := dispatch.ManualAssignCommand{
		OrderID:         req.OrderID,
		PickupCourierID: req.ShipperID,
		EntryHubID:      req.DestinationHubID,
		ExitSatelliteID: uuid.Nil,
	}
	if req.DestinationSatelliteID != nil {
		cmd.ExitSatelliteID = *req.DestinationSatelliteID
	}

	if err := h.manual.Handle(r.Context(), cmd); err != nil {
		writeError(w, err)
		return
	}

	writeCreated(w, map[string]any{"order_id": req.OrderID})
}

type batchAssignRequest struct {
	Pairs []struct {
		OrderID   uuid.UUID `json:"order_id"`
		ShipperID uuid.UUID `json:"shipper_id"`
	} `json:"pairs"`
}

type batchAssignResultResponse struct {
	OrderID uuid.UUID `json:"order_id"`
	Error   string    `json:"error,omitempty"`
}

// BatchAssign handles POST /dispatch/batch-assign-shippers.
func (h *DispatchHandler) BatchAssign(w http.ResponseWriter, r *http.Request) {
	var req batchAssignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &ports.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	pairs := make([]dispatch.BatchPair, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		pairs = append(pairs, dispatch.BatchPair{OrderID: p.OrderID, CourierID: p.ShipperID})
	}

	results := h.batch.Handle(r.Context(), pairs)

	out := make([]batchAssignResultResponse, 0, len(results))
	for _, res := range results {
		row := batchAssignResultResponse{OrderID: res.OrderID}
		if res.Err != nil {
			row.Error = res.Err.Error()
		}
		out = append(out, row)
	}

	writeOK(w, out)
}

// AssignTransfer handles POST /dispatch/transfer/assign-shipper.
func (h *DispatchHandler) AssignTransfer(w http.ResponseWriter, r *http.Request) {
	orderID, shipperID, ok := parseAssignQuery(w, r)
	if !ok {
		return
	}
	if err := h.role.AssignTransfer(r.Context(), orderID, shipperID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"order_id": orderID, "shipper_id": shipperID})
}

// AssignDelivery handles POST /dispatch/delivery/assign-shipper.
func (h *DispatchHandler) AssignDelivery(w http.ResponseWriter, r *http.Request) {
	orderID, shipperID, ok := parseAssignQuery(w, r)
	if !ok {
		return
	}
	if err := h.role.AssignDelivery(r.Context(), orderID, shipperID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"order_id": orderID, "shipper_id": shipperID})
}

func parseAssignQuery(w http.ResponseWriter, r *http.Request) (orderID, shipperID uuid.UUID, ok bool) {
	var err error
	orderID, err = uuid.Parse(r.URL.Query().Get("order_id"))
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "order_id", Reason: "not a UUID"})
		return orderID, shipperID, false
	}
	shipperID, err = uuid.Parse(r.URL.Query().Get("shipper_id"))
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "shipper_id", Reason: "not a UUID"})
		return orderID, shipperID, false
	}
	return orderID, shipperID, true
}

type legPatchRequest struct {
	AssignedCourierID      *uuid.UUID `json:"assigned_courier_id,omitempty"`
	ClearCourier           bool       `json:"clear_courier,omitempty"`
	OriginWarehouseID      *uuid.UUID `json:"origin_warehouse_id,omitempty"`
	DestinationWarehouseID *uuid.UUID `json:"destination_warehouse_id,omitempty"`
	Status                 *string    `json:"status,omitempty"`
}

// UpdateLeg handles PUT /dispatch/legs/{leg_id}.
func (h *DispatchHandler) UpdateLeg(w http.ResponseWriter, r *http.Request) {
	legID, err := uuid.Parse(r.PathValue("leg_id"))
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "leg_id", Reason: "not a UUID"})
		return
	}

	var req legPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &ports.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	patch := dispatch.LegPatch{
		AssignedCourierID:      req.AssignedCourierID,
		ClearCourier:           req.ClearCourier,
		OriginWarehouseID:      req.OriginWarehouseID,
		DestinationWarehouseID: req.DestinationWarehouseID,
	}
	if req.Status != nil {
		status := journey.LegStatus(*req.Status)
		patch.Status = &status
	}

	if err := h.update.Handle(r.Context(), legID, patch); err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, map[string]any{"leg_id": legID})
}

// DeleteLeg handles DELETE /dispatch/legs/{leg_id}.
func (h *DispatchHandler) DeleteLeg(w http.ResponseWriter, r *http.Request) {
	legID, err := uuid.Parse(r.PathValue("leg_id"))
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "leg_id", Reason: "not a UUID"})
		return
	}

	if err := h.del.Handle(r.Context(), legID); err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, map[string]any{"leg_id": legID})
}

// DeleteOrder handles DELETE /dispatch/orders/{order_id}.
func (h *DispatchHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("order_id"))
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "order_id", Reason: "not a UUID"})
		return
	}

	if err := h.deleteOrder.Handle(r.Context(), orderID); err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, map[string]any{"order_id": orderID})
}

type legResponse struct {
	LegID                  uuid.UUID  `json:"leg_id"`
	Sequence               int        `json:"sequence"`
	Type                   string     `json:"type"`
	Status                 string     `json:"status"`
	AssignedCourierID      *uuid.UUID `json:"assigned_courier_id,omitempty"`
	CourierName            string     `json:"courier_name,omitempty"`
	OriginWarehouseID      *uuid.UUID `json:"origin_warehouse_id,omitempty"`
	DestinationWarehouseID *uuid.UUID `json:"destination_warehouse_id,omitempty"`
	EstimatedDistanceKm    *float64   `json:"estimated_distance_km,omitempty"`
}

// OrderLegs handles GET /dispatch/orders/{order_id}/legs.
func (h *DispatchHandler) OrderLegs(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("order_id"))
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "order_id", Reason: "not a UUID"})
		return
	}

	legs, err := h.legs.ListByOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]legResponse, 0, len(legs))
	for _, l := range legs {
		row := legResponse{
			LegID:                  l.ID(),
			Sequence:               l.Sequence(),
			Type:                   l.Type().String(),
			Status:                 l.Status().String(),
			AssignedCourierID:      l.AssignedCourierID(),
			OriginWarehouseID:      l.OriginWarehouseID(),
			DestinationWarehouseID: l.DestinationWarehouseID(),
			EstimatedDistanceKm:    l.EstimatedDistanceKm(),
		}
		if l.AssignedCourierID() != nil {
			if name, err := h.couriers.DisplayName(r.Context(), *l.AssignedCourierID()); err == nil {
				row.CourierName = name
			}
		}
		out = append(out, row)
	}

	writeOK(w, out)
}

type areaSummaryResponse struct {
	AreaID             uuid.UUID      `json:"area_id"`
	PendingOrders      int            `json:"pending_orders"`
	LegsInFlightByType map[string]int `json:"legs_in_flight_by_type"`
	CouriersByStatus   map[string]int `json:"couriers_by_status"`
}

// Summary handles GET /dispatch/summary.
func (h *DispatchHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.summary.Handle(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]areaSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		row := areaSummaryResponse{
			AreaID:             s.AreaID,
			PendingOrders:      s.PendingOrders,
			LegsInFlightByType: map[string]int{},
			CouriersByStatus:   map[string]int{},
		}
		for t, n := range s.LegsInFlightByType {
			row.LegsInFlightByType[t.String()] = n
		}
		for st, n := range s.CouriersByStatus {
			row.CouriersByStatus[st.String()] = n
		}
		out = append(out, row)
	}

	writeOK(w, out)
}
