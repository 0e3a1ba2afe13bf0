// Package area models the geographic buckets used to localize pending work
// and available couriers.
package area

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Status is the closed set of lifecycle states for an Area.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func (s Status) String() string { return string(s) }

// Validation errors for Area construction.
var (
	ErrInvalidLatitude  = errors.New("area: latitude out of range")
	ErrInvalidLongitude = errors.New("area: longitude out of range")
	ErrInvalidRadius    = errors.New("area: radius_km must be positive")
	ErrInvalidStatus    = errors.New("area: unknown status")
)

// Area is a named geographic region used for bucketing orders and couriers.
type Area struct {
	id       uuid.UUID
	name     string
	centerLat, centerLon float64
	radiusKm float64
	status   Status
}

// New validates and constructs an Area.
func New(id uuid.UUID, name string, centerLat, centerLon, radiusKm float64, status Status) (*Area, error) {
	if centerLat < -90 || centerLat > 90 {
		return nil, ErrInvalidLatitude
	}
	if centerLon < -180 || centerLon > 180 {
		return nil, ErrInvalidLongitude
	}
	if radiusKm <= 0 {
		return nil, ErrInvalidRadius
	}
	if status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	return &Area{
		id:        id,
		name:      name,
		centerLat: centerLat,
		centerLon: centerLon,
		radiusKm:  radiusKm,
		status:    status,
	}, nil
}

func (a *Area) ID() uuid.UUID      { return a.id }
func (a *Area) Name() string       { return a.name }
func (a *Area) CenterLat() float64 { return a.centerLat }
func (a *Area) CenterLon() float64 { return a.centerLon }
func (a *Area) RadiusKm() float64  { return a.radiusKm }
func (a *Area) Status() Status     { return a.status }
func (a *Area) IsActive() bool     { return a.status == StatusActive }
