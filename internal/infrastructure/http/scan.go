package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/scan"
)

// ScanHandler serves the scan/journey endpoints (spec.md §6 "Scan /
// Journey").
type ScanHandler struct {
	machine *scan.Machine
}

// NewScanHandler constructs a ScanHandler.
func NewScanHandler(machine *scan.Machine) *ScanHandler {
	return &ScanHandler{machine: machine}
}

type scanRequest struct {
	CodeValue   string     `json:"code_value"`
	Action      string     `json:"action"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	Lat         *float64   `json:"lat,omitempty"`
	Lng         *float64   `json:"lng,omitempty"`
	Note        string     `json:"note,omitempty"`
}

type scanResponse struct {
	Success          bool       `json:"success"`
	Message          string     `json:"message"`
	OrderID          uuid.UUID  `json:"order_id"`
	OrderCode        string     `json:"order_code"`
	Action           string     `json:"action"`
	CurrentWarehouse *uuid.UUID `json:"current_warehouse,omitempty"`
}

func toScanResponse(r scan.Result) scanResponse {
	return scanResponse{
		Success:          r.Success,
		Message:          r.Message,
		OrderID:          r.OrderID,
		OrderCode:        r.OrderCode,
		Action:           string(r.Action),
		CurrentWarehouse: r.CurrentWarehouse,
	}
}

func actorRole(u ports.IdentityUser) scan.Role {
	if u.Role == "WAREHOUSE_STAFF" || u.Role == "WAREHOUSE_MANAGER" {
		return scan.RoleWarehouseStaff
	}
	return scan.RoleCourier
}

// Scan handles POST /barcodes/scan: an explicit action.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, &ports.NotAssignedError{Reason: "missing actor"})
		return
	}

	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &ports.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	actorID, err := uuid.Parse(actor.UserID)
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "actor", Reason: "actor id is not a UUID"})
		return
	}

	res, err := h.machine.Execute(r.Context(), scan.Request{
		CodeValue:   req.CodeValue,
		Action:      scan.Action(req.Action),
		ActorID:     actorID,
		ActorRole:   actorRole(actor),
		WarehouseID: req.WarehouseID,
		Note:        req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, toScanResponse(res))
}

type universalScanRequest struct {
	CodeValue string `json:"code_value"`
}

// UniversalScan handles POST /journey/scan: the server infers the
// action from order/leg state and actor role (spec.md §4.5).
func (h *ScanHandler) UniversalScan(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, &ports.NotAssignedError{Reason: "missing actor"})
		return
	}

	var req universalScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &ports.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	actorID, err := uuid.Parse(actor.UserID)
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "actor", Reason: "actor id is not a UUID"})
		return
	}

	res, err := h.machine.ExecuteUniversal(r.Context(), scan.UniversalRequest{
		CodeValue: req.CodeValue,
		ActorID:   actorID,
		ActorRole: actorRole(actor),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, toScanResponse(res))
}

// scanEventResponse is one row of GET /barcodes/order/{order_id}/history.
type scanEventResponse struct {
	CodeValue   string     `json:"code_value"`
	Action      string     `json:"action"`
	ActorID     string     `json:"actor_id"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	Success     bool       `json:"success"`
	Message     string     `json:"message,omitempty"`
}

// HistoryHandler serves the scan-history read model (SPEC_FULL.md §3).
type HistoryHandler struct {
	scanEvents ports.ScanEventRepository
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(scanEvents ports.ScanEventRepository) *HistoryHandler {
	return &HistoryHandler{scanEvents: scanEvents}
}

// History handles GET /barcodes/order/{order_id}/history.
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("order_id"))
	if err != nil {
		writeError(w, &ports.ValidationError{Field: "order_id", Reason: "not a UUID"})
		return
	}

	events, err := h.scanEvents.ListByOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]scanEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, scanEventResponse{
			CodeValue:   ev.CodeValue,
			Action:      ev.Action,
			ActorID:     ev.ActorID,
			WarehouseID: ev.WarehouseID,
			Success:     ev.Success,
			Message:     ev.Message,
		})
	}

	writeOK(w, out)
}
