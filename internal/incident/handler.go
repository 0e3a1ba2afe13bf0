// Package incident implements the Incident Handler (C7): on a
// courier-reported incident, reassigns that courier's live legs to the
// nearest available peer (spec.md §4.7). Nearest-peer search reuses the
// haversine helper also used by the Optimization Agent's first-mile
// matching (spec.md §4.6).
package incident

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// nowFn is overridden in tests for deterministic timestamps.
var nowFn = time.Now

// Report is the input to Handle (spec.md §4.7).
type Report struct {
	CourierID   uuid.UUID
	Description string
	CurrentLat  float64
	CurrentLon  float64
}

// Outcome reports what the handler did.
type Outcome struct {
	RescueNeeded bool
	RescuerID    *uuid.UUID
	ReassignedLegIDs []uuid.UUID
	Message      string
}

// Handler executes incident reassignment.
type Handler struct {
	log      logger.Logger
	uow      ports.UnitOfWork
	couriers ports.CourierRepository
	legs     ports.LegRepository
	routing  ports.RoutingProvider
	publish  ports.EventPublisher
}

// New constructs a Handler.
func New(log logger.Logger, uow ports.UnitOfWork, couriers ports.CourierRepository, legs ports.LegRepository, routing ports.RoutingProvider, publish ports.EventPublisher) *Handler {
	return &Handler{log: log, uow: uow, couriers: couriers, legs: legs, routing: routing, publish: publish}
}

// Handle processes an incident report (spec.md §4.7 steps 1-5).
func (h *Handler) Handle(ctx context.Context, report Report) (Outcome, error) {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("incident: begin transaction: %w", err)
	}
	defer func() { _ = h.uow.Rollback(ctx) }()

	affected, err := h.couriers.GetForUpdate(ctx, report.CourierID)
	if err != nil {
		return Outcome{}, err
	}

	liveLegs, err := h.legs.ListByCourier(ctx, report.CourierID, []journey.LegStatus{journey.LegStatusPending, journey.LegStatusInProgress})
	if err != nil {
		return Outcome{}, err
	}

	if len(liveLegs) == 0 {
		if err := affected.ReportIncident(ctx); err != nil {
			return Outcome{}, err
		}
		if err := h.couriers.Save(ctx, affected); err != nil {
			return Outcome{}, err
		}
		if err := h.uow.Commit(ctx); err != nil {
			return Outcome{}, fmt.Errorf("incident: commit transaction: %w", err)
		}
		return Outcome{RescueNeeded: false, Message: "no rescue needed"}, nil
	}

	motorbike := courier.VehicleMotorbike
	candidates, err := h.couriers.ListOnlineByAreaExcluding(ctx, affected.AreaID(), affected.ID(), &motorbike)
	if err != nil {
		return Outcome{}, err
	}

	rescuer := nearest(ports.Coordinate{Lat: report.CurrentLat, Lon: report.CurrentLon}, candidates, h.routing)
	if rescuer == nil {
		if err := affected.ReportIncident(ctx); err != nil {
			return Outcome{}, err
		}
		if err := h.couriers.Save(ctx, affected); err != nil {
			return Outcome{}, err
		}
		if err := h.uow.Commit(ctx); err != nil {
			return Outcome{}, fmt.Errorf("incident: commit transaction: %w", err)
		}
		h.log.Warn("incident: no rescuer available", "courier_id", report.CourierID, "leg_count", len(liveLegs))
		return Outcome{RescueNeeded: true, Message: "no nearby courier available to rescue"}, nil
	}

	now := nowFn()
	note := fmt.Sprintf("EMERGENCY TRANSFER: from %s (%s)", report.CourierID, report.Description)

	reassigned := make([]uuid.UUID, 0, len(liveLegs))
	for _, leg := range liveLegs {
		rescuerID := rescuer.ID()
		leg.SetAssignedCourier(&rescuerID)
		leg.AddAuditNote(note)
		if err := h.legs.Save(ctx, leg); err != nil {
			return Outcome{}, err
		}
		reassigned = append(reassigned, leg.ID())

		if err := h.publish.Publish(ctx, journey.IncidentReassignedEvent{
			OrderID: leg.OrderID().String(), LegID: leg.ID().String(),
			FromCourier: report.CourierID.String(), ToCourier: rescuer.ID().String(),
			Note: note, Occurred: now,
		}); err != nil {
			h.log.Warn("failed to publish incident reassignment event", "error", err)
		}
	}

	if err := affected.ReportIncident(ctx); err != nil {
		return Outcome{}, err
	}
	if err := h.couriers.Save(ctx, affected); err != nil {
		return Outcome{}, err
	}
	// The rescuer's status remains ONLINE; they acquire DELIVERING on
	// their next scan (spec.md §4.7 step 5).

	if err := h.uow.Commit(ctx); err != nil {
		return Outcome{}, fmt.Errorf("incident: commit transaction: %w", err)
	}

	rescuerID := rescuer.ID()
	return Outcome{
		RescueNeeded:     true,
		RescuerID:        &rescuerID,
		ReassignedLegIDs: reassigned,
		Message:          fmt.Sprintf("reassigned %d leg(s) to courier %s", len(reassigned), rescuer.ID()),
	}, nil
}

// nearest finds the closest candidate to origin by haversine distance,
// skipping candidates with no known location (spec.md §4.7 step 4). The
// Optimization Agent's first-mile matching ranks with the same
// RoutingProvider.Haversine in its own FindNearestShippers.
func nearest(origin ports.Coordinate, candidates []*courier.Courier, routing ports.RoutingProvider) *courier.Courier {
	type scored struct {
		c  *courier.Courier
		km float64
	}

	scoredList := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		lat, lon, ok := c.Location()
		if !ok {
			continue
		}
		km := routing.Haversine(origin, ports.Coordinate{Lat: lat, Lon: lon})
		scoredList = append(scoredList, scored{c: c, km: km})
	}

	if len(scoredList) == 0 {
		return nil
	}

	sort.Slice(scoredList, func(i, j int) bool { return scoredList[i].km < scoredList[j].km })

	return scoredList[0].c
}
