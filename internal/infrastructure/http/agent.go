package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/agent"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/incident"
)

// AgentHandler serves spec.md §6 "AI Optimizer (agent trigger)".
type AgentHandler struct {
	driver    *agent.Driver
	areas     ports.AreaRepository
	incidents *incident.Handler
}

// NewAgentHandler constructs an AgentHandler.
func NewAgentHandler(driver *agent.Driver, areas ports.AreaRepository, incidents *incident.Handler) *AgentHandler {
	return &AgentHandler{driver: driver, areas: areas, incidents: incidents}
}

type optimizeRequest struct {
	TargetID *uuid.UUID `json:"target_id,omitempty"`
}

type optimizeDetail struct {
	Tool   string `json:"tool"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type optimizeResponse struct {
	Status         string           `json:"status"`
	Summary        string           `json:"summary"`
	ProcessedCount int              `json:"processed_count"`
	Details        []optimizeDetail `json:"details"`
}

// Optimize handles POST /ai/optimize. If target_id is omitted, every
// ACTIVE area is ticked (spec.md §6).
func (h *AgentHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, &ports.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	var results []agent.TickResult
	if req.TargetID != nil {
		res, err := h.driver.Tick(r.Context(), *req.TargetID)
		if err != nil {
			writeError(w, err)
			return
		}
		results = []agent.TickResult{res}
	} else {
		var err error
		results, err = h.driver.TickAllActive(r.Context(), h.areas)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	writeOK(w, toOptimizeResponse(results))
}

func toOptimizeResponse(results []agent.TickResult) optimizeResponse {
	status := "ok"
	processed := 0
	details := make([]optimizeDetail, 0)

	for _, res := range results {
		if res.Err != "" {
			status = "partial"
		} else {
			processed++
		}
		for _, obs := range res.Observations {
			details = append(details, optimizeDetail{Tool: obs.Tool, Result: obs.Result, Error: obs.Err})
		}
	}

	return optimizeResponse{
		Status:         status,
		Summary:        summaryLine(len(results), processed),
		ProcessedCount: processed,
		Details:        details,
	}
}

func summaryLine(total, processed int) string {
	if total == 0 {
		return "no active areas to optimize"
	}
	return fmt.Sprintf("ticked %d of %d area(s)", processed, total)
}

type reportIncidentRequest struct {
	ShipperID uuid.UUID `json:"shipper_id"`
	Message   string    `json:"message"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type reportIncidentResponse struct {
	RescueNeeded     bool        `json:"rescue_needed"`
	RescuerID        *uuid.UUID  `json:"rescuer_id,omitempty"`
	ReassignedLegIDs []uuid.UUID `json:"reassigned_leg_ids,omitempty"`
	Message          string      `json:"message"`
}

// ReportIncident handles POST /ai/report-incident.
func (h *AgentHandler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	var req reportIncidentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &ports.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	outcome, err := h.incidents.Handle(r.Context(), incident.Report{
		CourierID:   req.ShipperID,
		Description: req.Message,
		CurrentLat:  req.Latitude,
		CurrentLon:  req.Longitude,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, reportIncidentResponse{
		RescueNeeded:     outcome.RescueNeeded,
		RescuerID:        outcome.RescuerID,
		ReassignedLegIDs: outcome.ReassignedLegIDs,
		Message:          outcome.Message,
	})
}
