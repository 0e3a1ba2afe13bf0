// Package routing implements ports.RoutingProvider: geocoding and
// distance lookups backed by an OSRM-shaped HTTP upstream, a
// process-lifetime cache, and a haversine fallback. Grounded on
// courier-emulation/internal/domain/services/route_generator.go.
package routing

import (
	"context"
	"fmt"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// Gateway implements ports.RoutingProvider.
type Gateway struct {
	client *client
	cache  *distanceCache
}

// NewGateway constructs a Gateway. The cache is owned by the Gateway and
// must be released with Close when the process shuts down.
func NewGateway(cfg Config) (*Gateway, error) {
	cache, err := newDistanceCache()
	if err != nil {
		return nil, err
	}

	return &Gateway{
		client: newClient(cfg),
		cache:  cache,
	}, nil
}

// Close releases the gateway's in-process caches.
func (g *Gateway) Close() {
	g.cache.Close()
}

var _ ports.RoutingProvider = (*Gateway)(nil)

// Geocode resolves a free-text address to coordinates, memoizing
// successful lookups for the process lifetime.
func (g *Gateway) Geocode(ctx context.Context, address string) (ports.Coordinate, error) {
	if coord, ok := g.cache.getGeocode(address); ok {
		return coord, nil
	}

	coord, err := g.client.fetchGeocode(ctx, address)
	if err != nil {
		return ports.Coordinate{}, err
	}

	g.cache.setGeocode(address, coord)
	return coord, nil
}

// Distance returns the road distance in kilometers between two points for
// the given vehicle mode. Never returns a negative value; on upstream
// failure it returns an error rather than silently substituting the
// haversine estimate — callers that want the fallback call Haversine
// themselves (spec.md §4.2).
func (g *Gateway) Distance(ctx context.Context, origin, dest ports.Coordinate, vehicle ports.VehicleMode) (float64, error) {
	mode := string(vehicle)

	if km, ok := g.cache.getDistance(origin, dest, mode); ok {
		return km, nil
	}

	km, err := g.client.fetchDistance(ctx, origin, dest, mode)
	if err != nil {
		return 0, err
	}

	if km < 0 {
		return 0, fmt.Errorf("%w: negative distance from upstream", ErrUpstream)
	}

	g.cache.setDistance(origin, dest, mode, km)
	return km, nil
}

// DistanceMatrix returns the distance in kilometers from origin to each
// destination, in order. A nil entry means that destination is
// unreachable from origin for the given vehicle. Results are served from
// cache where available; only cache misses are batched into a single
// upstream call, so a fully-cached matrix never touches the network.
func (g *Gateway) DistanceMatrix(ctx context.Context, origin ports.Coordinate, dests []ports.Coordinate, vehicle ports.VehicleMode) ([]*float64, error) {
	mode := string(vehicle)
	out := make([]*float64, len(dests))
	missIdx := make([]int, 0, len(dests))
	missDests := make([]ports.Coordinate, 0, len(dests))

	for i, d := range dests {
		if km, ok := g.cache.getDistance(origin, d, mode); ok {
			kmCopy := km
			out[i] = &kmCopy
			continue
		}
		missIdx = append(missIdx, i)
		missDests = append(missDests, d)
	}

	if len(missDests) == 0 {
		return out, nil
	}

	fetched, err := g.client.fetchDistanceMatrix(ctx, origin, missDests, mode)
	if err != nil {
		return nil, err
	}

	for j, idx := range missIdx {
		if j >= len(fetched) || fetched[j] == nil {
			continue
		}
		out[idx] = fetched[j]
		g.cache.setDistance(origin, missDests[j], mode, *fetched[j])
	}

	return out, nil
}

// Haversine computes the great-circle distance, bypassing both cache and
// upstream. Used where no routed distance is wanted (the agent's
// first-mile matching, incident peer search) and as the ranking fallback
// when a distance_matrix call fails (planner, agent rebalance).
func (g *Gateway) Haversine(a, b ports.Coordinate) float64 {
	return Haversine(a, b)
}
