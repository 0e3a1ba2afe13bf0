package planner

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/domain/warehouse"
)

// Planner selects an entry hub and exit satellite for an order and builds
// its leg template (spec.md §4.3).
type Planner struct {
	log         logger.Logger
	warehouses  ports.WarehouseRepository
	routing     ports.RoutingProvider
}

// New constructs a Planner.
func New(log logger.Logger, warehouses ports.WarehouseRepository, routing ports.RoutingProvider) *Planner {
	return &Planner{log: log, warehouses: warehouses, routing: routing}
}

// Result is the output of Plan: the chosen endpoints, the leg template,
// and the summed distance.
type Result struct {
	EntryHub       *warehouse.Warehouse
	ExitSatellite  *warehouse.Warehouse
	Legs           []*journey.Leg
	TotalDistanceKm float64
}

// Plan builds the leg template for order, consulting active warehouses
// and the routing gateway. The order must already carry SME and receiver
// coordinates; Plan never geocodes (spec.md §4.3 step 1, edge case
// "Receiver address that failed geocoding").
func (p *Planner) Plan(ctx context.Context, order *journey.Order, smeLat, smeLon float64, newLegID func() uuid.UUID) (*Result, error) {
	receiverLat, receiverLon, ok := order.ReceiverCoordinates()
	if !ok {
		return nil, ErrMissingCoordinates
	}

	hubs, err := p.warehouses.ListActiveByType(ctx, warehouse.TypeHub)
	if err != nil {
		return nil, err
	}
	satellites, err := p.warehouses.ListActiveByType(ctx, warehouse.TypeSatellite)
	if err != nil {
		return nil, err
	}

	if len(hubs) == 0 || len(satellites) == 0 {
		return nil, ErrNoCapacity
	}

	entryHub, err := p.nearest(ctx, ports.Coordinate{Lat: smeLat, Lon: smeLon}, hubs, ports.VehicleModeCar)
	if err != nil {
		return nil, err
	}

	exitSatellite, err := p.nearest(ctx, ports.Coordinate{Lat: receiverLat, Lon: receiverLon}, satellites, ports.VehicleModeCar)
	if err != nil {
		return nil, err
	}

	return p.buildLegs(ctx, order, entryHub, exitSatellite, smeLat, smeLon, newLegID)
}

// PlanWithEndpoints builds the leg template for explicitly chosen
// warehouses, bypassing nearest-hub/nearest-satellite selection. Used by
// manual dispatch assignment (spec.md §4.4), where the caller supplies
// entry_hub_id/exit_satellite_id directly.
func (p *Planner) PlanWithEndpoints(ctx context.Context, order *journey.Order, entryHubID, exitSatelliteID uuid.UUID, smeLat, smeLon float64, newLegID func() uuid.UUID) (*Result, error) {
	if !order.HasReceiverCoordinates() {
		return nil, ErrMissingCoordinates
	}

	entryHub, err := p.warehouses.Get(ctx, entryHubID)
	if err != nil {
		return nil, err
	}
	exitSatellite, err := p.warehouses.Get(ctx, exitSatelliteID)
	if err != nil {
		return nil, err
	}

	return p.buildLegs(ctx, order, entryHub, exitSatellite, smeLat, smeLon, newLegID)
}

func (p *Planner) buildLegs(ctx context.Context, order *journey.Order, entryHub, exitSatellite *warehouse.Warehouse, smeLat, smeLon float64, newLegID func() uuid.UUID) (*Result, error) {
	receiverLat, receiverLon, ok := order.ReceiverCoordinates()
	if !ok {
		return nil, ErrMissingCoordinates
	}

	var legs []*journey.Leg
	var total float64

	smeID := order.SmeID()

	if entryHub.ID() == exitSatellite.ID() {
		pickup, pickupKm, err := p.buildLeg(ctx, newLegID(), order.ID(), 1, journey.LegTypePickup,
			&smeID, nil, ptr(entryHub.ID()), false,
			ports.Coordinate{Lat: smeLat, Lon: smeLon}, ports.Coordinate{Lat: entryHub.Lat(), Lon: entryHub.Lon()}, ports.VehicleModeBike)
		if err != nil {
			return nil, err
		}
		legs = append(legs, pickup)
		total += valueOr0(pickupKm)

		delivery, deliveryKm, err := p.buildLeg(ctx, newLegID(), order.ID(), 2, journey.LegTypeDelivery,
			nil, ptr(entryHub.ID()), nil, true,
			ports.Coordinate{Lat: entryHub.Lat(), Lon: entryHub.Lon()}, ports.Coordinate{Lat: receiverLat, Lon: receiverLon}, ports.VehicleModeBike)
		if err != nil {
			return nil, err
		}
		legs = append(legs, delivery)
		total += valueOr0(deliveryKm)
	} else {
		pickup, pickupKm, err := p.buildLeg(ctx, newLegID(), order.ID(), 1, journey.LegTypePickup,
			&smeID, nil, ptr(entryHub.ID()), false,
			ports.Coordinate{Lat: smeLat, Lon: smeLon}, ports.Coordinate{Lat: entryHub.Lat(), Lon: entryHub.Lon()}, ports.VehicleModeBike)
		if err != nil {
			return nil, err
		}
		legs = append(legs, pickup)
		total += valueOr0(pickupKm)

		transfer, transferKm, err := p.buildLeg(ctx, newLegID(), order.ID(), 2, journey.LegTypeTransfer,
			nil, ptr(entryHub.ID()), ptr(exitSatellite.ID()), false,
			ports.Coordinate{Lat: entryHub.Lat(), Lon: entryHub.Lon()}, ports.Coordinate{Lat: exitSatellite.Lat(), Lon: exitSatellite.Lon()}, ports.VehicleModeTruck)
		if err != nil {
			return nil, err
		}
		legs = append(legs, transfer)
		total += valueOr0(transferKm)

		delivery, deliveryKm, err := p.buildLeg(ctx, newLegID(), order.ID(), 3, journey.LegTypeDelivery,
			nil, ptr(exitSatellite.ID()), nil, true,
			ports.Coordinate{Lat: exitSatellite.Lat(), Lon: exitSatellite.Lon()}, ports.Coordinate{Lat: receiverLat, Lon: receiverLon}, ports.VehicleModeBike)
		if err != nil {
			return nil, err
		}
		legs = append(legs, delivery)
		total += valueOr0(deliveryKm)
	}

	return &Result{
		EntryHub:        entryHub,
		ExitSatellite:   exitSatellite,
		Legs:            legs,
		TotalDistanceKm: total,
	}, nil
}

func (p *Planner) buildLeg(
	ctx context.Context,
	id, orderID uuid.UUID,
	sequence int,
	legType journey.LegType,
	originSmeID, originWarehouseID, destinationWarehouseID *uuid.UUID,
	destinationIsReceiver bool,
	origin, dest ports.Coordinate,
	vehicle ports.VehicleMode,
) (*journey.Leg, *float64, error) {
	leg, err := journey.NewLeg(id, orderID, sequence, legType, originSmeID, originWarehouseID, destinationWarehouseID, destinationIsReceiver)
	if err != nil {
		return nil, nil, err
	}

	km, err := p.routing.Distance(ctx, origin, dest, vehicle)
	if err != nil {
		// Required step per spec.md §4.2: the dispatcher does not fall
		// back silently on leg-distance computation, it records null and
		// logs a warning.
		p.log.Warn("leg distance computation failed, recording null", slog.String("leg_type", legType.String()), slog.Any("error", err))
		leg.SetEstimatedDistanceKm(nil)
		return leg, nil, nil
	}

	leg.SetEstimatedDistanceKm(&km)
	return leg, &km, nil
}

// nearest chooses the warehouse in candidates minimizing road distance
// from origin, tie-breaking by lowest warehouse id lexicographically
// (spec.md §4.3 steps 2-3). A distance_matrix call is used so all
// candidates cost a single upstream round trip. Candidates without
// coordinates on the matrix response (upstream partial failure) are
// skipped and logged rather than failing the whole plan. A total
// distance_matrix failure falls back to haversine-ranked candidates
// instead of failing order creation (spec.md §7, §4.2).
func (p *Planner) nearest(ctx context.Context, origin ports.Coordinate, candidates []*warehouse.Warehouse, vehicle ports.VehicleMode) (*warehouse.Warehouse, error) {
	sorted := make([]*warehouse.Warehouse, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID().String() < sorted[j].ID().String() })

	dests := make([]ports.Coordinate, len(sorted))
	for i, w := range sorted {
		dests[i] = ports.Coordinate{Lat: w.Lat(), Lon: w.Lon()}
	}

	distances, err := p.routing.DistanceMatrix(ctx, origin, dests, vehicle)
	if err != nil {
		p.log.Warn("nearest: distance_matrix failed, falling back to haversine", slog.Any("error", err))
		distances = make([]*float64, len(dests))
		for i, d := range dests {
			km := p.routing.Haversine(origin, d)
			distances[i] = &km
		}
	}

	var best *warehouse.Warehouse
	var bestKm float64

	for i, km := range distances {
		if km == nil {
			p.log.Warn("matrix entry unavailable, skipping candidate", slog.String("warehouse_id", sorted[i].ID().String()))
			continue
		}
		if best == nil || *km < bestKm {
			best = sorted[i]
			bestKm = *km
		}
	}

	if best == nil {
		return nil, ErrNoCapacity
	}

	return best, nil
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func valueOr0(km *float64) float64 {
	if km == nil {
		return 0
	}
	return *km
}
