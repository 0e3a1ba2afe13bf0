package routing

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache configuration, grounded on
// courier-emulation/internal/domain/services/route_generator.go: a
// process-lifetime, best-effort cache (spec.md §5 "per-process,
// best-effort, no TTL required" — a long TTL is used here only to bound
// memory, not for correctness).
const (
	cacheNumCounters = 100_000
	cacheMaxCost     = 50_000_00
	cacheBufferItems = 64
	cacheTTL         = 24 * time.Hour
)

// distanceCache memoizes geocode and distance lookups by normalized key
// for the process lifetime.
type distanceCache struct {
	geocode  *ristretto.Cache[string, Coordinate]
	distance *ristretto.Cache[string, float64]
}

func newDistanceCache() (*distanceCache, error) {
	geocode, err := ristretto.NewCache(&ristretto.Config[string, Coordinate]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("routing: new geocode cache: %w", err)
	}

	distance, err := ristretto.NewCache(&ristretto.Config[string, float64]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("routing: new distance cache: %w", err)
	}

	return &distanceCache{geocode: geocode, distance: distance}, nil
}

func (c *distanceCache) Close() {
	c.geocode.Close()
	c.distance.Close()
}

func (c *distanceCache) getGeocode(address string) (Coordinate, bool) {
	return c.geocode.Get(normalizeAddress(address))
}

func (c *distanceCache) setGeocode(address string, coord Coordinate) {
	c.geocode.SetWithTTL(normalizeAddress(address), coord, 1, cacheTTL)
}

func distanceKey(origin, dest Coordinate, vehicle string) string {
	return fmt.Sprintf("%s:%.6f,%.6f-%.6f,%.6f", vehicle, origin.Lat, origin.Lon, dest.Lat, dest.Lon)
}

func (c *distanceCache) getDistance(origin, dest Coordinate, vehicle string) (float64, bool) {
	return c.distance.Get(distanceKey(origin, dest, vehicle))
}

func (c *distanceCache) setDistance(origin, dest Coordinate, vehicle string, km float64) {
	c.distance.SetWithTTL(distanceKey(origin, dest, vehicle), km, 1, cacheTTL)
}

func normalizeAddress(address string) string {
	out := make([]rune, 0, len(address))
	for _, r := range address {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}
