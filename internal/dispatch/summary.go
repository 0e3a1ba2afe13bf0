package dispatch

import (
	"context"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// AreaSummary is one area's row of GET /dispatch/summary (SPEC_FULL.md
// §3 "Dispatch summary aggregation"): a read model assembled from
// existing repositories, no new persisted state.
type AreaSummary struct {
	AreaID             uuid.UUID
	PendingOrders      int
	LegsInFlightByType map[journey.LegType]int
	CouriersByStatus   map[courier.Status]int
}

// SummaryHandler builds the dispatch summary.
type SummaryHandler struct {
	areas      ports.AreaRepository
	orders     ports.OrderRepository
	legs       ports.LegRepository
	couriers   ports.CourierRepository
}

// NewSummaryHandler constructs a SummaryHandler.
func NewSummaryHandler(areas ports.AreaRepository, orders ports.OrderRepository, legs ports.LegRepository, couriers ports.CourierRepository) *SummaryHandler {
	return &SummaryHandler{areas: areas, orders: orders, legs: legs, couriers: couriers}
}

// Handle aggregates, per active area: pending order count, in-flight leg
// count by type, and courier counts by status.
func (h *SummaryHandler) Handle(ctx context.Context) ([]AreaSummary, error) {
	areas, err := h.areas.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]AreaSummary, 0, len(areas))

	for _, a := range areas {
		pending, err := h.orders.ListPendingByArea(ctx, a.ID())
		if err != nil {
			return nil, err
		}

		legsByType := map[journey.LegType]int{}
		for _, o := range pending {
			legs, err := h.legs.ListByOrder(ctx, o.ID())
			if err != nil {
				return nil, err
			}
			for _, l := range legs {
				if l.Status() == journey.LegStatusInProgress || l.Status() == journey.LegStatusPending {
					legsByType[l.Type()]++
				}
			}
		}

		couriersInArea, err := h.couriers.ListByArea(ctx, a.ID())
		if err != nil {
			return nil, err
		}
		couriersByStatus := map[courier.Status]int{}
		for _, c := range couriersInArea {
			couriersByStatus[c.Status()]++
		}

		summaries = append(summaries, AreaSummary{
			AreaID:             a.ID(),
			PendingOrders:      len(pending),
			LegsInFlightByType: legsByType,
			CouriersByStatus:   couriersByStatus,
		})
	}

	return summaries, nil
}
