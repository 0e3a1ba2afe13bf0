// Package sme models the small-business shippers that originate orders.
package sme

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Status is the closed set of SME lifecycle states.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func (s Status) String() string { return string(s) }

var (
	ErrInvalidStatus    = errors.New("sme: unknown status")
	ErrInvalidLatitude  = errors.New("sme: latitude out of range")
	ErrInvalidLongitude = errors.New("sme: longitude out of range")
)

// SME is a shipper origin. Coordinates are optional until geocoded, which
// is why Lat/Lon are pointers.
type SME struct {
	id     uuid.UUID
	lat    *float64
	lon    *float64
	areaID uuid.UUID
	status Status
}

// New validates and constructs an SME. lat/lon may be nil (not yet
// geocoded).
func New(id uuid.UUID, lat, lon *float64, areaID uuid.UUID, status Status) (*SME, error) {
	switch status {
	case StatusPending, StatusActive, StatusInactive:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if lat != nil && (*lat < -90 || *lat > 90) {
		return nil, ErrInvalidLatitude
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return nil, ErrInvalidLongitude
	}

	return &SME{id: id, lat: lat, lon: lon, areaID: areaID, status: status}, nil
}

func (s *SME) ID() uuid.UUID     { return s.id }
func (s *SME) AreaID() uuid.UUID { return s.areaID }
func (s *SME) Status() Status    { return s.status }

// HasCoordinates reports whether the SME has been geocoded.
func (s *SME) HasCoordinates() bool { return s.lat != nil && s.lon != nil }

// Coordinates returns (lat, lon, ok). ok is false if not geocoded.
func (s *SME) Coordinates() (lat, lon float64, ok bool) {
	if !s.HasCoordinates() {
		return 0, 0, false
	}
	return *s.lat, *s.lon, true
}

// CanOriginateOrder reports whether this SME may originate new orders.
// Only ACTIVE SMEs may (spec.md §3).
func (s *SME) CanOriginateOrder() bool { return s.status == StatusActive }
