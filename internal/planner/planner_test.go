package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"
	"github.com/stretchr/testify/require"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/domain/warehouse"
)

type fakeWarehouseRepo struct {
	hubs       []*warehouse.Warehouse
	satellites []*warehouse.Warehouse
}

func (f *fakeWarehouseRepo) Get(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	for _, w := range append(append([]*warehouse.Warehouse{}, f.hubs...), f.satellites...) {
		if w.ID() == id {
			return w, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakeWarehouseRepo) Save(ctx context.Context, w *warehouse.Warehouse) error { return nil }

func (f *fakeWarehouseRepo) ListActiveByType(ctx context.Context, kind warehouse.Type) ([]*warehouse.Warehouse, error) {
	switch kind {
	case warehouse.TypeHub:
		return f.hubs, nil
	case warehouse.TypeSatellite:
		return f.satellites, nil
	}
	return nil, nil
}

func (f *fakeWarehouseRepo) ListAll(ctx context.Context) ([]*warehouse.Warehouse, error) {
	return append(append([]*warehouse.Warehouse{}, f.hubs...), f.satellites...), nil
}

var _ ports.WarehouseRepository = (*fakeWarehouseRepo)(nil)

// fakeRouting answers Distance/DistanceMatrix with haversine, skipping
// real HTTP calls.
type fakeRouting struct{}

func (fakeRouting) Geocode(ctx context.Context, address string) (ports.Coordinate, error) {
	return ports.Coordinate{}, nil
}

func (fakeRouting) Distance(ctx context.Context, origin, dest ports.Coordinate, vehicle ports.VehicleMode) (float64, error) {
	return fakeRouting{}.Haversine(origin, dest), nil
}

func (f fakeRouting) DistanceMatrix(ctx context.Context, origin ports.Coordinate, dests []ports.Coordinate, vehicle ports.VehicleMode) ([]*float64, error) {
	out := make([]*float64, len(dests))
	for i, d := range dests {
		km := f.Haversine(origin, d)
		out[i] = &km
	}
	return out, nil
}

func (fakeRouting) Haversine(a, b ports.Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return (dLat*dLat + dLon*dLon) * 1000 // cheap monotone stand-in, fine for ordering in tests
}

// failingMatrixRouting answers Distance with haversine but fails every
// DistanceMatrix call, exercising the upstream-outage fallback path.
type failingMatrixRouting struct {
	fakeRouting
}

func (failingMatrixRouting) DistanceMatrix(ctx context.Context, origin ports.Coordinate, dests []ports.Coordinate, vehicle ports.VehicleMode) ([]*float64, error) {
	return nil, errors.New("routing provider unavailable")
}

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func mustWarehouse(t *testing.T, kind warehouse.Type, lat, lon float64, areaID uuid.UUID) *warehouse.Warehouse {
	t.Helper()
	w, err := warehouse.New(uuid.New(), kind, lat, lon, areaID, 1000, warehouse.StatusActive)
	require.NoError(t, err)
	return w
}

func TestPlanner_ThreeLegWhenHubAndSatelliteDiffer(t *testing.T) {
	areaID := uuid.New()
	hub := mustWarehouse(t, warehouse.TypeHub, 10.78, 106.71, areaID)
	satellite := mustWarehouse(t, warehouse.TypeSatellite, 10.79, 106.72, areaID)

	repo := &fakeWarehouseRepo{hubs: []*warehouse.Warehouse{hub}, satellites: []*warehouse.Warehouse{satellite}}
	p := New(newTestLogger(t), repo, fakeRouting{})

	smeLat, smeLon := 10.77, 106.70
	receiverLat, receiverLon := 10.80, 106.73

	order := journey.NewOrder(uuid.New(), "ORD-1", uuid.New(), "Jane", "555", "addr", &receiverLat, &receiverLon, 2.0, uuid.New(), areaID)

	result, err := p.Plan(context.Background(), order, smeLat, smeLon, uuid.New)
	require.NoError(t, err)
	require.Len(t, result.Legs, 3)
	require.Equal(t, journey.LegTypePickup, result.Legs[0].Type())
	require.Equal(t, journey.LegTypeTransfer, result.Legs[1].Type())
	require.Equal(t, journey.LegTypeDelivery, result.Legs[2].Type())
	require.Equal(t, 1, result.Legs[0].Sequence())
	require.Equal(t, 2, result.Legs[1].Sequence())
	require.Equal(t, 3, result.Legs[2].Sequence())
	require.Equal(t, hub.ID(), result.EntryHub.ID())
	require.Equal(t, satellite.ID(), result.ExitSatellite.ID())
}

func TestPlanner_TwoLegWhenHubEqualsSatellite(t *testing.T) {
	areaID := uuid.New()
	combined := mustWarehouse(t, warehouse.TypeHub, 10.78, 106.71, areaID)
	// Reuse the same coordinates and id family by constructing a
	// warehouse that is both registered as the only hub and the only
	// satellite candidate, forcing entry_hub == exit_satellite.
	single := combined

	repo := &fakeWarehouseRepo{hubs: []*warehouse.Warehouse{single}, satellites: []*warehouse.Warehouse{single}}
	p := New(newTestLogger(t), repo, fakeRouting{})

	smeLat, smeLon := 10.77, 106.70
	receiverLat, receiverLon := 10.80, 106.73

	order := journey.NewOrder(uuid.New(), "ORD-2", uuid.New(), "Jane", "555", "addr", &receiverLat, &receiverLon, 2.0, uuid.New(), areaID)

	result, err := p.Plan(context.Background(), order, smeLat, smeLon, uuid.New)
	require.NoError(t, err)
	require.Len(t, result.Legs, 2)
	require.Equal(t, journey.LegTypePickup, result.Legs[0].Type())
	require.Equal(t, journey.LegTypeDelivery, result.Legs[1].Type())
}

func TestPlanner_NoCapacityWhenNoActiveHubs(t *testing.T) {
	areaID := uuid.New()
	satellite := mustWarehouse(t, warehouse.TypeSatellite, 10.79, 106.72, areaID)
	repo := &fakeWarehouseRepo{satellites: []*warehouse.Warehouse{satellite}}
	p := New(newTestLogger(t), repo, fakeRouting{})

	receiverLat, receiverLon := 10.80, 106.73
	order := journey.NewOrder(uuid.New(), "ORD-3", uuid.New(), "Jane", "555", "addr", &receiverLat, &receiverLon, 2.0, uuid.New(), areaID)

	_, err := p.Plan(context.Background(), order, 10.77, 106.70, uuid.New)
	require.ErrorIs(t, err, ErrNoCapacity)
}

func TestPlanner_FallsBackToHaversineWhenDistanceMatrixFails(t *testing.T) {
	areaID := uuid.New()
	near := mustWarehouse(t, warehouse.TypeHub, 10.771, 106.701, areaID)
	far := mustWarehouse(t, warehouse.TypeHub, 15.0, 110.0, areaID)
	satellite := mustWarehouse(t, warehouse.TypeSatellite, 10.79, 106.72, areaID)

	repo := &fakeWarehouseRepo{hubs: []*warehouse.Warehouse{near, far}, satellites: []*warehouse.Warehouse{satellite}}
	p := New(newTestLogger(t), repo, failingMatrixRouting{})

	smeLat, smeLon := 10.77, 106.70
	receiverLat, receiverLon := 10.80, 106.73

	order := journey.NewOrder(uuid.New(), "ORD-5", uuid.New(), "Jane", "555", "addr", &receiverLat, &receiverLon, 2.0, uuid.New(), areaID)

	result, err := p.Plan(context.Background(), order, smeLat, smeLon, uuid.New)
	require.NoError(t, err)
	require.Equal(t, near.ID(), result.EntryHub.ID())
}

func TestPlanner_MissingReceiverCoordinatesFails(t *testing.T) {
	areaID := uuid.New()
	hub := mustWarehouse(t, warehouse.TypeHub, 10.78, 106.71, areaID)
	satellite := mustWarehouse(t, warehouse.TypeSatellite, 10.79, 106.72, areaID)
	repo := &fakeWarehouseRepo{hubs: []*warehouse.Warehouse{hub}, satellites: []*warehouse.Warehouse{satellite}}
	p := New(newTestLogger(t), repo, fakeRouting{})

	order := journey.NewOrder(uuid.New(), "ORD-4", uuid.New(), "Jane", "555", "addr", nil, nil, 2.0, uuid.New(), areaID)

	_, err := p.Plan(context.Background(), order, 10.77, 106.70, uuid.New)
	require.ErrorIs(t, err, ErrMissingCoordinates)
}
