// Package warehouse models physical nodes (hubs, satellites, local depots)
// in the dispatch network.
package warehouse

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Type is the closed set of warehouse kinds.
type Type string

const (
	TypeHub        Type = "HUB"
	TypeSatellite  Type = "SATELLITE"
	TypeLocalDepot Type = "LOCAL_DEPOT"
)

func (t Type) String() string { return string(t) }

// Status is the closed set of warehouse lifecycle states.
type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusInactive    Status = "INACTIVE"
	StatusMaintenance Status = "MAINTENANCE"
)

func (s Status) String() string { return string(s) }

var (
	ErrInvalidType        = errors.New("warehouse: unknown type")
	ErrInvalidStatus      = errors.New("warehouse: unknown status")
	ErrInvalidLatitude    = errors.New("warehouse: latitude out of range")
	ErrInvalidLongitude   = errors.New("warehouse: longitude out of range")
	ErrNegativeCapacity   = errors.New("warehouse: capacity_limit must be >= 0")
	ErrNegativeLoad       = errors.New("warehouse: current_load must be >= 0")
)

// Warehouse is a physical node: a HUB, SATELLITE, or LOCAL_DEPOT.
//
// Invariant: 0 <= current_load <= capacity_limit is enforced as a warning,
// not a hard rejection — SetCurrentLoad never fails on overflow, it is the
// periodic load-sync job's job to log the anomaly (spec.md §3).
type Warehouse struct {
	mu sync.Mutex

	id             uuid.UUID
	kind           Type
	lat, lon       float64
	areaID         uuid.UUID
	capacityLimit  int
	currentLoad    int
	status         Status
}

// New validates and constructs a Warehouse.
func New(id uuid.UUID, kind Type, lat, lon float64, areaID uuid.UUID, capacityLimit int, status Status) (*Warehouse, error) {
	switch kind {
	case TypeHub, TypeSatellite, TypeLocalDepot:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, kind)
	}

	switch status {
	case StatusActive, StatusInactive, StatusMaintenance:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if lat < -90 || lat > 90 {
		return nil, ErrInvalidLatitude
	}
	if lon < -180 || lon > 180 {
		return nil, ErrInvalidLongitude
	}
	if capacityLimit < 0 {
		return nil, ErrNegativeCapacity
	}

	return &Warehouse{
		id:            id,
		kind:          kind,
		lat:           lat,
		lon:           lon,
		areaID:        areaID,
		capacityLimit: capacityLimit,
		status:        status,
	}, nil
}

func (w *Warehouse) ID() uuid.UUID     { return w.id }
func (w *Warehouse) Type() Type        { return w.kind }
func (w *Warehouse) Lat() float64      { return w.lat }
func (w *Warehouse) Lon() float64      { return w.lon }
func (w *Warehouse) AreaID() uuid.UUID { return w.areaID }
func (w *Warehouse) Status() Status    { return w.status }
func (w *Warehouse) IsActive() bool    { return w.status == StatusActive }

func (w *Warehouse) CapacityLimit() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.capacityLimit
}

func (w *Warehouse) CurrentLoad() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentLoad
}

// SetCurrentLoad overwrites the load counter with an absolute value.
// Only the periodic sync job should call this (spec.md §9 Open Question:
// incremental per-scan updates were removed in favor of this single path).
func (w *Warehouse) SetCurrentLoad(load int) error {
	if load < 0 {
		return ErrNegativeLoad
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentLoad = load

	return nil
}

// Overloaded reports whether current_load exceeds capacity_limit. Per
// spec.md §3 this is a warning condition, never a hard rejection.
func (w *Warehouse) Overloaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentLoad > w.capacityLimit
}
