package ports

import (
	"context"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
)

// Coordinate is a plain (lat, lon) pair used at the RoutingProvider
// boundary so callers don't need to import internal/routing's vo types.
type Coordinate struct {
	Lat, Lon float64
}

// VehicleMode is the coarse vehicle classification RoutingProvider uses
// (spec.md §4.2); unknown modes fall back to "car".
type VehicleMode string

const (
	VehicleModeBike  VehicleMode = "bike"
	VehicleModeCar   VehicleMode = "car"
	VehicleModeTruck VehicleMode = "truck"
)

// RoutingProvider is the external geocoding + distance-matrix
// collaborator (spec.md §2, §4.2). The core never owns this — it is
// consumed through this interface only.
type RoutingProvider interface {
	Geocode(ctx context.Context, address string) (Coordinate, error)
	Distance(ctx context.Context, origin, dest Coordinate, vehicle VehicleMode) (km float64, err error)
	DistanceMatrix(ctx context.Context, origin Coordinate, dests []Coordinate, vehicle VehicleMode) ([]*float64, error)
	Haversine(a, b Coordinate) float64
}

// NotificationKind selects which channel-agnostic template to use.
type NotificationKind string

const (
	NotificationOrderDelivered NotificationKind = "ORDER_DELIVERED"
	NotificationIncident       NotificationKind = "INCIDENT"
)

// NotificationSink is the fire-and-forget push/email collaborator
// (spec.md §2, §6). Delivery failures are logged, not retried, by the
// core (spec.md §5).
type NotificationSink interface {
	Push(ctx context.Context, userID, title, body string, kind NotificationKind) error
	Email(ctx context.Context, to, subject, html string) error
}

// IdentityUser is the subset of identity claims the core needs.
type IdentityUser struct {
	UserID string
	Role   string
	SmeID  string
}

// IdentityService validates bearer tokens for authenticated requests
// (spec.md §6). Owned by the integration layer, not the core.
type IdentityService interface {
	ValidateToken(ctx context.Context, token string) (IdentityUser, error)
}

// Event is the interface domain events must satisfy to be published
// through EventPublisher (mirrors journey.DomainEvent plus a stable
// EventType for outbox routing).
type Event interface {
	EventType() string
}

// EventPublisher publishes domain events to the outbox/bus (spec.md §5).
type EventPublisher interface {
	Publish(ctx context.Context, event journey.DomainEvent) error
}
