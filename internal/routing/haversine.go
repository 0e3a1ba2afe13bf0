package routing

import (
	"math"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// earthRadiusKm is the mean Earth radius in kilometers.
const earthRadiusKm = 6371.0

// Haversine computes the great-circle distance between two coordinates in
// kilometers. Pure function, no I/O; never returns a negative value or
// null (spec.md §4.2).
func Haversine(a, b ports.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
