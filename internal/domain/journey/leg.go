package journey

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/fsm"
)

const (
	legEventStart  fsm.Event = "START"
	legEventFinish fsm.Event = "FINISH"
	legEventCancel fsm.Event = "CANCEL"
)

// Leg is a single atomic transport movement (spec.md §3).
//
// Endpoint invariant: exactly one of OriginSmeID/OriginWarehouseID is set
// (or neither, which is invalid except transiently during construction),
// and exactly one of DestinationWarehouseID/DestinationIsReceiver holds.
type Leg struct {
	mu sync.Mutex

	id       uuid.UUID
	orderID  uuid.UUID
	sequence int
	legType  LegType

	originSmeID       *uuid.UUID
	originWarehouseID *uuid.UUID

	destinationWarehouseID *uuid.UUID
	destinationIsReceiver  bool

	assignedCourierID  *uuid.UUID
	estimatedDistanceKm *float64

	startedAt   *time.Time
	completedAt *time.Time

	auditNotes []string

	fsm *fsm.FSM
}

// NewLeg validates the endpoint invariant and constructs a PENDING Leg.
func NewLeg(
	id, orderID uuid.UUID,
	sequence int,
	legType LegType,
	originSmeID, originWarehouseID *uuid.UUID,
	destinationWarehouseID *uuid.UUID,
	destinationIsReceiver bool,
) (*Leg, error) {
	if err := validateEndpoints(originSmeID, originWarehouseID, destinationWarehouseID, destinationIsReceiver); err != nil {
		return nil, err
	}

	l := &Leg{
		id:                     id,
		orderID:                orderID,
		sequence:               sequence,
		legType:                legType,
		originSmeID:            originSmeID,
		originWarehouseID:      originWarehouseID,
		destinationWarehouseID: destinationWarehouseID,
		destinationIsReceiver:  destinationIsReceiver,
	}
	l.fsm = fsm.New(fsm.State(LegStatusPending.String()))
	l.addTransitionRules()

	return l, nil
}

// ReconstituteLeg rebuilds a Leg from persisted state without re-running
// creation-time validation (the repository is trusted).
func ReconstituteLeg(
	id, orderID uuid.UUID,
	sequence int,
	legType LegType,
	status LegStatus,
	originSmeID, originWarehouseID *uuid.UUID,
	destinationWarehouseID *uuid.UUID,
	destinationIsReceiver bool,
	assignedCourierID *uuid.UUID,
	estimatedDistanceKm *float64,
	startedAt, completedAt *time.Time,
) *Leg {
	l := &Leg{
		id:                     id,
		orderID:                orderID,
		sequence:               sequence,
		legType:                legType,
		originSmeID:            originSmeID,
		originWarehouseID:      originWarehouseID,
		destinationWarehouseID: destinationWarehouseID,
		destinationIsReceiver:  destinationIsReceiver,
		assignedCourierID:      assignedCourierID,
		estimatedDistanceKm:    estimatedDistanceKm,
		startedAt:              startedAt,
		completedAt:            completedAt,
	}
	l.fsm = fsm.New(fsm.State(status.String()))
	l.addTransitionRules()

	return l
}

func validateEndpoints(originSmeID, originWarehouseID, destinationWarehouseID *uuid.UUID, destinationIsReceiver bool) error {
	if originSmeID != nil && originWarehouseID != nil {
		return ErrEndpointInvariant
	}
	if originSmeID == nil && originWarehouseID == nil {
		return ErrEndpointInvariant
	}
	if destinationWarehouseID != nil && destinationIsReceiver {
		return ErrEndpointInvariant
	}
	if destinationWarehouseID == nil && !destinationIsReceiver {
		return ErrEndpointInvariant
	}

	return nil
}

func (l *Leg) addTransitionRules() {
	f := l.fsm
	f.AddTransitionRule(fsm.State(LegStatusPending.String()), legEventStart, fsm.State(LegStatusInProgress.String()))
	f.AddTransitionRule(fsm.State(LegStatusInProgress.String()), legEventFinish, fsm.State(LegStatusCompleted.String()))
	f.AddTransitionRule(fsm.State(LegStatusPending.String()), legEventCancel, fsm.State(LegStatusCancelled.String()))
}

func (l *Leg) ID() uuid.UUID      { return l.id }
func (l *Leg) OrderID() uuid.UUID { return l.orderID }
func (l *Leg) Sequence() int      { return l.sequence }
func (l *Leg) Type() LegType      { return l.legType }

func (l *Leg) Status() LegStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LegStatus(l.fsm.GetCurrentState().String())
}

func (l *Leg) OriginSmeID() *uuid.UUID             { return l.originSmeID }
func (l *Leg) OriginWarehouseID() *uuid.UUID       { return l.originWarehouseID }
func (l *Leg) DestinationWarehouseID() *uuid.UUID  { return l.destinationWarehouseID }
func (l *Leg) DestinationIsReceiver() bool         { return l.destinationIsReceiver }

// SetOriginWarehouseID re-points the leg's origin to a warehouse,
// clearing OriginSmeID (the endpoint invariant forbids both). Used by
// the Dispatcher's update-leg patch (spec.md §4.4).
func (l *Leg) SetOriginWarehouseID(warehouseID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.originSmeID = nil
	l.originWarehouseID = &warehouseID
}

// SetDestinationWarehouseID re-points the leg's destination to a
// warehouse, clearing DestinationIsReceiver.
func (l *Leg) SetDestinationWarehouseID(warehouseID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.destinationIsReceiver = false
	l.destinationWarehouseID = &warehouseID
}

func (l *Leg) AssignedCourierID() *uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.assignedCourierID
}

// SetAssignedCourier attaches (or clears, with nil) a courier to this leg.
// Callers are responsible for vehicle-leg compatibility (spec.md §4.4).
func (l *Leg) SetAssignedCourier(courierID *uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.assignedCourierID = courierID
}

func (l *Leg) EstimatedDistanceKm() *float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.estimatedDistanceKm
}

// SetEstimatedDistanceKm records a computed distance, or nil when the
// Routing Gateway could not determine one (spec.md §4.2).
func (l *Leg) SetEstimatedDistanceKm(km *float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.estimatedDistanceKm = km
}

func (l *Leg) StartedAt() *time.Time   { return l.startedAt }
func (l *Leg) CompletedAt() *time.Time { return l.completedAt }

func (l *Leg) AuditNotes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.auditNotes))
	copy(out, l.auditNotes)
	return out
}

// AddAuditNote appends a free-text audit trail entry, used by the
// Incident Handler (spec.md §4.7 step 5).
func (l *Leg) AddAuditNote(note string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.auditNotes = append(l.auditNotes, note)
}

// Start transitions PENDING -> IN_PROGRESS and records startedAt.
func (l *Leg) Start(ctx context.Context, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.fsm.TriggerEvent(ctx, legEventStart); err != nil {
		return &ErrInvalidLegTransition{LegID: l.id.String(), From: LegStatus(l.fsm.GetCurrentState().String()), Event: "START"}
	}

	l.startedAt = &now

	return nil
}

// Finish transitions IN_PROGRESS -> COMPLETED and records completedAt.
// The caller (scan state machine) is responsible for the cross-leg
// ordering invariant (spec.md §3, §8 property 2) before calling this.
func (l *Leg) Finish(ctx context.Context, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	from := LegStatus(l.fsm.GetCurrentState().String())

	if err := l.fsm.TriggerEvent(ctx, legEventFinish); err != nil {
		return &ErrInvalidLegTransition{LegID: l.id.String(), From: from, Event: "FINISH"}
	}

	l.completedAt = &now

	return nil
}

// Cancel transitions PENDING -> CANCELLED. Rejected once the leg has
// started (spec.md §3).
func (l *Leg) Cancel(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	from := LegStatus(l.fsm.GetCurrentState().String())
	if err := l.fsm.TriggerEvent(ctx, legEventCancel); err != nil {
		return &ErrInvalidLegTransition{LegID: l.id.String(), From: from, Event: "CANCEL"}
	}

	return nil
}
