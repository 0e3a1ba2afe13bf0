// Package courier models delivery workers and their status lifecycle.
//
// The lifecycle (spec.md §3) is driven by an FSM, in the same style as
// internal/domain/journey's Order/JourneyLeg state machines: OFFLINE ⇄
// ONLINE; ONLINE -> DELIVERING on first leg assignment; DELIVERING ->
// ONLINE when the courier owns no more non-terminal legs; * -> OFFLINE on
// incident.
package courier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/fsm"
)

// Vehicle is the closed set of courier vehicle kinds.
type Vehicle string

const (
	VehicleMotorbike Vehicle = "MOTORBIKE"
	VehicleCar       Vehicle = "CAR"
	VehicleTruck     Vehicle = "TRUCK"
	VehicleBicycle   Vehicle = "BICYCLE"
)

func (v Vehicle) String() string { return string(v) }

// Status is the closed set of courier availability states.
type Status string

const (
	StatusOffline    Status = "OFFLINE"
	StatusOnline     Status = "ONLINE"
	StatusDelivering Status = "DELIVERING"
)

func (s Status) String() string { return string(s) }

// Transition events for the courier status FSM.
const (
	eventGoOnline       fsm.Event = "GO_ONLINE"
	eventGoOffline      fsm.Event = "GO_OFFLINE"
	eventAssignFirstLeg fsm.Event = "ASSIGN_FIRST_LEG"
	eventDropLastLeg    fsm.Event = "DROP_LAST_LEG"
	eventIncident       fsm.Event = "INCIDENT"
)

var (
	ErrInvalidVehicle   = errors.New("courier: unknown vehicle")
	ErrInvalidStatus    = errors.New("courier: unknown status")
	ErrInvalidRating    = errors.New("courier: rating must be in [0,5]")
	ErrInvalidLatitude  = errors.New("courier: latitude out of range")
	ErrInvalidLongitude = errors.New("courier: longitude out of range")
)

// Courier is a delivery worker.
type Courier struct {
	id              uuid.UUID
	vehicle         Vehicle
	areaID          uuid.UUID
	currentLat      *float64
	currentLon      *float64
	rating          float64
	homeWarehouseID *uuid.UUID

	fsm *fsm.FSM
}

// New validates and constructs a Courier in the given initial status.
func New(id uuid.UUID, vehicle Vehicle, areaID uuid.UUID, rating float64, homeWarehouseID *uuid.UUID, status Status) (*Courier, error) {
	switch vehicle {
	case VehicleMotorbike, VehicleCar, VehicleTruck, VehicleBicycle:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidVehicle, vehicle)
	}

	switch status {
	case StatusOffline, StatusOnline, StatusDelivering:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if rating < 0 || rating > 5 {
		return nil, ErrInvalidRating
	}

	c := &Courier{
		id:              id,
		vehicle:         vehicle,
		areaID:          areaID,
		rating:          rating,
		homeWarehouseID: homeWarehouseID,
	}
	c.fsm = fsm.New(fsm.State(status.String()))
	c.addTransitionRules()

	return c, nil
}

func (c *Courier) addTransitionRules() {
	f := c.fsm
	f.AddTransitionRule(fsm.State(StatusOffline.String()), eventGoOnline, fsm.State(StatusOnline.String()))
	f.AddTransitionRule(fsm.State(StatusOnline.String()), eventGoOffline, fsm.State(StatusOffline.String()))
	f.AddTransitionRule(fsm.State(StatusOnline.String()), eventAssignFirstLeg, fsm.State(StatusDelivering.String()))
	f.AddTransitionRule(fsm.State(StatusDelivering.String()), eventDropLastLeg, fsm.State(StatusOnline.String()))
	f.AddTransitionRule(fsm.State(StatusOnline.String()), eventIncident, fsm.State(StatusOffline.String()))
	f.AddTransitionRule(fsm.State(StatusDelivering.String()), eventIncident, fsm.State(StatusOffline.String()))
}

func (c *Courier) ID() uuid.UUID              { return c.id }
func (c *Courier) Vehicle() Vehicle           { return c.vehicle }
func (c *Courier) AreaID() uuid.UUID          { return c.areaID }
func (c *Courier) Rating() float64            { return c.rating }
func (c *Courier) HomeWarehouseID() *uuid.UUID { return c.homeWarehouseID }
func (c *Courier) Status() Status             { return Status(c.fsm.GetCurrentState().String()) }

// SetAreaID reassigns the courier's area, used by the rebalance tool
// (spec.md §4.6).
func (c *Courier) SetAreaID(areaID uuid.UUID) { c.areaID = areaID }

// HasLocation reports whether a last-known GPS fix is recorded.
func (c *Courier) HasLocation() bool { return c.currentLat != nil && c.currentLon != nil }

// Location returns (lat, lon, ok).
func (c *Courier) Location() (lat, lon float64, ok bool) {
	if !c.HasLocation() {
		return 0, 0, false
	}
	return *c.currentLat, *c.currentLon, true
}

// SetLocation records the courier's last-known GPS position.
func (c *Courier) SetLocation(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return ErrInvalidLatitude
	}
	if lon < -180 || lon > 180 {
		return ErrInvalidLongitude
	}

	c.currentLat = &lat
	c.currentLon = &lon

	return nil
}

// GoOnline transitions OFFLINE -> ONLINE.
func (c *Courier) GoOnline(ctx context.Context) error {
	return c.fsm.TriggerEvent(ctx, eventGoOnline)
}

// GoOffline transitions ONLINE -> OFFLINE.
func (c *Courier) GoOffline(ctx context.Context) error {
	return c.fsm.TriggerEvent(ctx, eventGoOffline)
}

// AssignFirstLeg transitions ONLINE -> DELIVERING, called when the
// courier is assigned its first non-terminal leg.
func (c *Courier) AssignFirstLeg(ctx context.Context) error {
	return c.fsm.TriggerEvent(ctx, eventAssignFirstLeg)
}

// DropLastLeg transitions DELIVERING -> ONLINE, called when the courier
// no longer owns any non-terminal leg.
func (c *Courier) DropLastLeg(ctx context.Context) error {
	return c.fsm.TriggerEvent(ctx, eventDropLastLeg)
}

// ReportIncident forces the courier OFFLINE regardless of current state
// (ONLINE or DELIVERING), per the Incident Handler (spec.md §4.7).
func (c *Courier) ReportIncident(ctx context.Context) error {
	if c.Status() == StatusOffline {
		return nil
	}

	return c.fsm.TriggerEvent(ctx, eventIncident)
}

// CompatibleWithLeg reports whether this vehicle may be assigned to the given
// leg type, per the vehicle-leg compatibility matrix (spec.md §4.4).
func (v Vehicle) CompatibleWithLeg(legType string) bool {
	switch legType {
	case "PICKUP", "DELIVERY":
		return v == VehicleMotorbike || v == VehicleCar || v == VehicleBicycle
	case "TRANSFER":
		return v == VehicleTruck || v == VehicleCar
	default:
		return false
	}
}
