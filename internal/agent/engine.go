package agent

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/dispatch"
	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/incident"
)

// firstMileRadiusKm is spec.md §4.6 Phase 1's coarse haversine filter.
const firstMileRadiusKm = 15.0

// rebalanceMaxMoves is spec.md §4.6 "reassign up to 5 idle online
// motorbike couriers".
const rebalanceMaxMoves = 5

// Engine implements the pure, side-effecting actions behind each tool
// name (spec.md §4.6 Phase 1/2, rebalance; §4.7 incident). It has no
// in-memory planning state across calls — every tick starts fresh
// (spec.md §4.6 "stateless between ticks").
type Engine struct {
	log        logger.Logger
	orders     ports.OrderRepository
	legs       ports.LegRepository
	couriers   ports.CourierRepository
	warehouses ports.WarehouseRepository
	areas      ports.AreaRepository
	smes       ports.SMERepository
	routing    ports.RoutingProvider
	batch      *dispatch.BatchAssignHandler
	incidents  *incident.Handler
}

// NewEngine constructs an Engine.
func NewEngine(
	log logger.Logger,
	orders ports.OrderRepository,
	legs ports.LegRepository,
	couriers ports.CourierRepository,
	warehouses ports.WarehouseRepository,
	areas ports.AreaRepository,
	smes ports.SMERepository,
	routing ports.RoutingProvider,
	batch *dispatch.BatchAssignHandler,
	incidents *incident.Handler,
) *Engine {
	return &Engine{
		log: log, orders: orders, legs: legs, couriers: couriers,
		warehouses: warehouses, areas: areas, smes: smes, routing: routing,
		batch: batch, incidents: incidents,
	}
}

// PendingOrder is one row of get_pending_orders.
type PendingOrder struct {
	OrderID uuid.UUID
	Lat     float64
	Lon     float64
}

// GetPendingOrders implements the get_pending_orders tool (spec.md §4.6
// Phase 1 step 1): pending orders whose receiver coordinates are present
// and whose SME has coordinates.
func (e *Engine) GetPendingOrders(ctx context.Context, areaID uuid.UUID) ([]PendingOrder, error) {
	orders, err := e.orders.ListPendingByArea(ctx, areaID)
	if err != nil {
		return nil, err
	}

	out := make([]PendingOrder, 0, len(orders))
	for _, o := range orders {
		lat, lon, ok := o.ReceiverCoordinates()
		if !ok {
			continue
		}
		sme, err := e.smes.Get(ctx, o.SmeID())
		if err != nil || !sme.HasCoordinates() {
			continue
		}
		out = append(out, PendingOrder{OrderID: o.ID(), Lat: lat, Lon: lon})
	}

	return out, nil
}

// CourierLocation is one row of get_available_shippers/get_trucks_in_area.
type CourierLocation struct {
	CourierID uuid.UUID
	Lat       float64
	Lon       float64
}

// GetAvailableShippers implements get_available_shippers (spec.md §4.6
// Phase 1 step 2): online motorbike couriers, preferring last-known GPS,
// else area centroid.
func (e *Engine) GetAvailableShippers(ctx context.Context, areaID uuid.UUID) ([]CourierLocation, error) {
	motorbike := courier.VehicleMotorbike
	couriers, err := e.couriers.ListOnlineByArea(ctx, areaID, &motorbike)
	if err != nil {
		return nil, err
	}

	area, err := e.areas.Get(ctx, areaID)
	if err != nil {
		return nil, err
	}

	out := make([]CourierLocation, 0, len(couriers))
	for _, c := range couriers {
		lat, lon, ok := c.Location()
		if !ok {
			lat, lon = area.CenterLat(), area.CenterLon()
		}
		out = append(out, CourierLocation{CourierID: c.ID(), Lat: lat, Lon: lon})
	}

	return out, nil
}

// NearestMatch is one row of find_nearest_shippers.
type NearestMatch struct {
	OrderID   uuid.UUID
	CourierID uuid.UUID
	Km        float64
}

// FindNearestShippers implements find_nearest_shippers: haversine
// distances from all candidate couriers, kept within 15km, sorted
// ascending (spec.md §4.6 Phase 1 step 3 — "no external API calls here").
func (e *Engine) FindNearestShippers(order PendingOrder, candidates []CourierLocation) []NearestMatch {
	matches := make([]NearestMatch, 0, len(candidates))
	for _, c := range candidates {
		km := e.routing.Haversine(
			ports.Coordinate{Lat: order.Lat, Lon: order.Lon},
			ports.Coordinate{Lat: c.Lat, Lon: c.Lon},
		)
		if km <= firstMileRadiusKm {
			matches = append(matches, NearestMatch{OrderID: order.OrderID, CourierID: c.CourierID, Km: km})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Km < matches[j].Km })

	return matches
}

// MatchBatch greedily matches orders to the nearest unused courier
// across the whole area, one-to-one (spec.md §4.6 Phase 1 step 4).
func (e *Engine) MatchBatch(orders []PendingOrder, candidates []CourierLocation) []dispatch.BatchPair {
	type candidateMatch struct {
		orderID   uuid.UUID
		courierID uuid.UUID
		km        float64
	}

	all := make([]candidateMatch, 0, len(orders)*len(candidates))
	for _, o := range orders {
		for _, m := range e.FindNearestShippers(o, candidates) {
			all = append(all, candidateMatch{orderID: m.OrderID, courierID: m.CourierID, km: m.Km})
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].km < all[j].km })

	usedOrders := map[uuid.UUID]bool{}
	usedCouriers := map[uuid.UUID]bool{}
	pairs := make([]dispatch.BatchPair, 0, len(orders))

	for _, m := range all {
		if usedOrders[m.orderID] || usedCouriers[m.courierID] {
			continue
		}
		usedOrders[m.orderID] = true
		usedCouriers[m.courierID] = true
		pairs = append(pairs, dispatch.BatchPair{OrderID: m.orderID, CourierID: m.courierID})
	}

	return pairs
}

// ProcessBatchAssignments implements process_batch_assignments: commits
// the batch via the Dispatcher (spec.md §4.6 Phase 1 step 4).
func (e *Engine) ProcessBatchAssignments(ctx context.Context, pairs []dispatch.BatchPair) []dispatch.BatchResult {
	return e.batch.Handle(ctx, pairs)
}

// GetAreaTransferQueue implements get_area_transfer_queue (spec.md §4.6
// Phase 2 step 1): TRANSFER/PENDING legs whose origin hub is in the area
// and whose preceding PICKUP is COMPLETED.
func (e *Engine) GetAreaTransferQueue(ctx context.Context, areaID uuid.UUID) ([]*journey.Leg, error) {
	return e.legs.ListPendingTransfersReadyInArea(ctx, areaID)
}

// GetHubTransferQueue implements get_hub_transfer_queue: the subset of
// GetAreaTransferQueue originating at a specific hub.
func (e *Engine) GetHubTransferQueue(ctx context.Context, areaID, hubID uuid.UUID) ([]*journey.Leg, error) {
	legs, err := e.legs.ListPendingTransfersReadyInArea(ctx, areaID)
	if err != nil {
		return nil, err
	}

	out := make([]*journey.Leg, 0, len(legs))
	for _, l := range legs {
		if l.OriginWarehouseID() != nil && *l.OriginWarehouseID() == hubID {
			out = append(out, l)
		}
	}

	return out, nil
}

// GetTrucksInArea implements get_trucks_in_area: TRUCK couriers assigned
// to the area (spec.md §4.6 Phase 2 step 2).
func (e *Engine) GetTrucksInArea(ctx context.Context, areaID uuid.UUID) ([]*courier.Courier, error) {
	truck := courier.VehicleTruck
	return e.couriers.ListOnlineByArea(ctx, areaID, &truck)
}

// GroupByDestination clusters pending transfer legs by destination
// satellite id (spec.md §4.6 Phase 2 "implementation may group by
// destination id").
func GroupByDestination(legs []*journey.Leg) map[uuid.UUID][]*journey.Leg {
	groups := map[uuid.UUID][]*journey.Leg{}
	for _, l := range legs {
		if l.DestinationWarehouseID() == nil {
			continue
		}
		groups[*l.DestinationWarehouseID()] = append(groups[*l.DestinationWarehouseID()], l)
	}
	return groups
}

// AssignBatchToTruck implements assign_batch_to_truck: attaches
// truckCourierID to each leg in legIDs (spec.md §4.6 Phase 2 step 2).
func (e *Engine) AssignBatchToTruck(ctx context.Context, truckCourierID uuid.UUID, legIDs []uuid.UUID) ([]uuid.UUID, error) {
	c, err := e.couriers.GetForUpdate(ctx, truckCourierID)
	if err != nil {
		return nil, err
	}
	if !c.Vehicle().CompatibleWithLeg(journey.LegTypeTransfer.String()) {
		return nil, &dispatch.ErrIncompatibleVehicle{Vehicle: c.Vehicle().String(), LegType: journey.LegTypeTransfer.String()}
	}

	assigned := make([]uuid.UUID, 0, len(legIDs))
	for _, legID := range legIDs {
		leg, err := e.legs.Get(ctx, legID)
		if err != nil {
			e.log.Warn("assign_batch_to_truck: leg not found, skipping", "leg_id", legID, "error", err)
			continue
		}
		if leg.Status() != journey.LegStatusPending {
			continue
		}
		leg.SetAssignedCourier(&truckCourierID)
		if err := e.legs.Save(ctx, leg); err != nil {
			return assigned, err
		}
		assigned = append(assigned, legID)
	}

	if len(assigned) > 0 && c.Status() != courier.StatusDelivering {
		if err := c.AssignFirstLeg(ctx); err == nil {
			_ = e.couriers.Save(ctx, c)
		}
	}

	return assigned, nil
}

// RebalanceShippers implements rebalance_shippers (spec.md §4.6
// "Rebalance"): query other active areas, pick neighbors within maxKm of
// the overloaded area's centroid, move up to 5 idle online motorbike
// couriers into the overloaded area.
func (e *Engine) RebalanceShippers(ctx context.Context, overloadedAreaID uuid.UUID, maxKm float64) ([]uuid.UUID, error) {
	overloaded, err := e.areas.Get(ctx, overloadedAreaID)
	if err != nil {
		return nil, err
	}

	allAreas, err := e.areas.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	neighbors := make([]*uuid.UUID, 0, len(allAreas))
	dests := make([]ports.Coordinate, 0, len(allAreas))
	neighborIDs := make([]uuid.UUID, 0, len(allAreas))
	for _, a := range allAreas {
		if a.ID() == overloadedAreaID {
			continue
		}
		id := a.ID()
		neighbors = append(neighbors, &id)
		dests = append(dests, ports.Coordinate{Lat: a.CenterLat(), Lon: a.CenterLon()})
		neighborIDs = append(neighborIDs, a.ID())
	}

	if len(dests) == 0 {
		return nil, nil
	}

	origin := ports.Coordinate{Lat: overloaded.CenterLat(), Lon: overloaded.CenterLon()}
	distances, err := e.routing.DistanceMatrix(ctx, origin, dests, ports.VehicleModeCar)
	if err != nil {
		e.log.Warn("rebalance: distance_matrix failed, falling back to haversine", "area_id", overloadedAreaID, "error", err)
		distances = make([]*float64, len(dests))
		for i, d := range dests {
			km := e.routing.Haversine(origin, d)
			distances[i] = &km
		}
	}

	var inRange []uuid.UUID
	for i, km := range distances {
		if km != nil && *km <= maxKm {
			inRange = append(inRange, neighborIDs[i])
		}
	}

	motorbike := courier.VehicleMotorbike
	moved := make([]uuid.UUID, 0, rebalanceMaxMoves)

	for _, areaID := range inRange {
		if len(moved) >= rebalanceMaxMoves {
			break
		}

		idle, err := e.couriers.ListOnlineByArea(ctx, areaID, &motorbike)
		if err != nil {
			return moved, err
		}

		for _, c := range idle {
			if len(moved) >= rebalanceMaxMoves {
				break
			}
			if c.Status() != courier.StatusOnline {
				continue
			}
			c.SetAreaID(overloadedAreaID)
			if err := e.couriers.Save(ctx, c); err != nil {
				return moved, err
			}
			moved = append(moved, c.ID())
		}
	}

	return moved, nil
}

// HubRoutingReport is the observation returned by optimize_hub_routing:
// queue depth at a hub, so the model can judge whether more truck
// capacity is needed (spec.md §4.6 Phase 2).
type HubRoutingReport struct {
	HubID          uuid.UUID
	QueueDepth     int
	DestinationsCount int
}

// OptimizeHubRouting implements optimize_hub_routing: reports a hub's
// transfer queue depth and how many distinct destination satellites it
// fans out to, without committing any change itself.
func (e *Engine) OptimizeHubRouting(ctx context.Context, hubID, areaID uuid.UUID) (HubRoutingReport, error) {
	if _, err := e.warehouses.Get(ctx, hubID); err != nil {
		return HubRoutingReport{}, err
	}

	legs, err := e.GetHubTransferQueue(ctx, areaID, hubID)
	if err != nil {
		return HubRoutingReport{}, err
	}

	return HubRoutingReport{
		HubID:             hubID,
		QueueDepth:        len(legs),
		DestinationsCount: len(GroupByDestination(legs)),
	}, nil
}

// ReportIncident implements the report_incident tool, delegating to the
// Incident Handler (spec.md §4.7).
func (e *Engine) ReportIncident(ctx context.Context, report incident.Report) (incident.Outcome, error) {
	return e.incidents.Handle(ctx, report)
}
