package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// Coordinate is an alias of ports.Coordinate so the rest of this package
// doesn't need to repeat the import everywhere.
type Coordinate = ports.Coordinate

// osrmRouteResponse mirrors the subset of OSRM's /route response this
// client reads. Grounded on
// courier-emulation/internal/domain/services/route_generator.go.
type osrmRouteResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
	} `json:"routes"`
}

// osrmTableResponse mirrors OSRM's /table response, used for
// distance_matrix (one upstream call per batch, spec.md §4.2).
type osrmTableResponse struct {
	Code      string      `json:"code"`
	Distances [][]*float64 `json:"distances"` // meters, nil = unreachable
}

// osrmGeocodeResponse mirrors a Nominatim-shaped geocoder response: the
// first matching result's coordinates.
type osrmGeocodeResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Config configures the HTTP client for the routing upstream.
type Config struct {
	OSRMBaseURL     string
	GeocodeBaseURL  string
	Timeout         time.Duration
}

func vehicleProfile(vehicle string) string {
	switch vehicle {
	case "bike":
		return "bike"
	case "truck":
		// OSRM's public demo server only ships car/bike/foot profiles;
		// a truck profile is an operator-provided OSRM deployment detail,
		// so truck falls back to the "car" profile for routing purposes
		// while still being tagged "truck" in the cache key.
		return "driving"
	default:
		return "driving"
	}
}

func (c *client) fetchDistance(ctx context.Context, origin, dest Coordinate, vehicle string) (float64, error) {
	u := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=false",
		strings.TrimRight(c.cfg.OSRMBaseURL, "/"), vehicleProfile(vehicle),
		origin.Lon, origin.Lat, dest.Lon, dest.Lat)

	var resp osrmRouteResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return 0, err
	}

	if resp.Code != "Ok" || len(resp.Routes) == 0 {
		return 0, ErrNoRoute
	}

	return resp.Routes[0].Distance / 1000.0, nil
}

func (c *client) fetchDistanceMatrix(ctx context.Context, origin Coordinate, dests []Coordinate, vehicle string) ([]*float64, error) {
	coords := make([]string, 0, len(dests)+1)
	coords = append(coords, fmt.Sprintf("%f,%f", origin.Lon, origin.Lat))
	for _, d := range dests {
		coords = append(coords, fmt.Sprintf("%f,%f", d.Lon, d.Lat))
	}

	sources := "0"
	destIdx := make([]string, len(dests))
	for i := range dests {
		destIdx[i] = fmt.Sprintf("%d", i+1)
	}

	u := fmt.Sprintf("%s/table/v1/%s/%s?sources=%s&destinations=%s",
		strings.TrimRight(c.cfg.OSRMBaseURL, "/"), vehicleProfile(vehicle),
		strings.Join(coords, ";"), sources, strings.Join(destIdx, ";"))

	var resp osrmTableResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	if resp.Code != "Ok" || len(resp.Distances) == 0 {
		return nil, ErrNoRoute
	}

	row := resp.Distances[0]
	out := make([]*float64, len(row))
	for i, meters := range row {
		if meters == nil {
			continue
		}
		km := *meters / 1000.0
		out[i] = &km
	}

	return out, nil
}

func (c *client) fetchGeocode(ctx context.Context, address string) (Coordinate, error) {
	u := fmt.Sprintf("%s/search?format=json&limit=1&q=%s",
		strings.TrimRight(c.cfg.GeocodeBaseURL, "/"), url.QueryEscape(address))

	var resp osrmGeocodeResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return Coordinate{}, err
	}

	if len(resp) == 0 {
		return Coordinate{}, ErrAddressNotFound
	}

	var coord Coordinate
	if _, err := fmt.Sscanf(resp[0].Lat, "%f", &coord.Lat); err != nil {
		return Coordinate{}, fmt.Errorf("%w: bad latitude %q", ErrUpstream, resp[0].Lat)
	}
	if _, err := fmt.Sscanf(resp[0].Lon, "%f", &coord.Lon); err != nil {
		return Coordinate{}, fmt.Errorf("%w: bad longitude %q", ErrUpstream, resp[0].Lon)
	}

	return coord, nil
}

type client struct {
	cfg        Config
	httpClient *http.Client
}

func newClient(cfg Config) *client {
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// getJSON issues a GET and decodes the JSON body, collapsing timeouts,
// non-2xx, and parse errors into ErrUpstream (spec.md §4.2 "Failure
// semantics").
func (c *client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}

	return nil
}
