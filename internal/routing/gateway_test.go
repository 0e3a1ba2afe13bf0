package routing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Warehouse hub in central London to a point roughly 1 degree of
	// latitude north, a well-known ~111km reference distance.
	london := ports.Coordinate{Lat: 51.5074, Lon: -0.1278}
	north := ports.Coordinate{Lat: 52.5074, Lon: -0.1278}

	km := Haversine(london, north)

	require.InDelta(t, 111.2, km, 1.0)
}

func TestHaversine_SamePointIsZero(t *testing.T) {
	p := ports.Coordinate{Lat: 12.34, Lon: 56.78}

	require.Equal(t, 0.0, Haversine(p, p))
}

func TestDistanceCache_RoundTrip(t *testing.T) {
	cache, err := newDistanceCache()
	require.NoError(t, err)
	defer cache.Close()

	origin := ports.Coordinate{Lat: 1, Lon: 2}
	dest := ports.Coordinate{Lat: 3, Lon: 4}

	_, ok := cache.getDistance(origin, dest, "car")
	require.False(t, ok)

	cache.setDistance(origin, dest, "car", 42.5)
	cache.distance.Wait()

	km, ok := cache.getDistance(origin, dest, "car")
	require.True(t, ok)
	require.Equal(t, 42.5, km)
}

func TestDistanceCache_VehicleModeIsPartOfKey(t *testing.T) {
	origin := ports.Coordinate{Lat: 1, Lon: 2}
	dest := ports.Coordinate{Lat: 3, Lon: 4}

	require.NotEqual(t, distanceKey(origin, dest, "car"), distanceKey(origin, dest, "bike"))
}

func TestNormalizeAddress_LowercasesOnly(t *testing.T) {
	require.Equal(t, "12 oak st", normalizeAddress("12 Oak St"))
}

func TestGateway_ImplementsRoutingProvider(t *testing.T) {
	var _ ports.RoutingProvider = (*Gateway)(nil)
}
