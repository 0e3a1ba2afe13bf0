package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/planner"
)

// BatchPair is one (order, courier) match proposed by manual batch input
// or the Optimization Agent's first-mile matching (spec.md §4.4 "Batch /
// AI assignment", §4.6 Phase 1).
type BatchPair struct {
	OrderID   uuid.UUID
	CourierID uuid.UUID
}

// BatchResult reports the outcome for one pair.
type BatchResult struct {
	OrderID uuid.UUID
	Err     error
}

// BatchAssignHandler executes batch/AI assignment.
type BatchAssignHandler struct {
	log      logger.Logger
	uow      ports.UnitOfWork
	orders   ports.OrderRepository
	legs     ports.LegRepository
	couriers ports.CourierRepository
	smes     ports.SMERepository
	planner  *planner.Planner
	publish  ports.EventPublisher
}

// NewBatchAssignHandler constructs a BatchAssignHandler.
func NewBatchAssignHandler(
	log logger.Logger,
	uow ports.UnitOfWork,
	orders ports.OrderRepository,
	legs ports.LegRepository,
	couriers ports.CourierRepository,
	smes ports.SMERepository,
	pl *planner.Planner,
	publish ports.EventPublisher,
) *BatchAssignHandler {
	return &BatchAssignHandler{
		log: log, uow: uow, orders: orders, legs: legs,
		couriers: couriers, smes: smes, planner: pl, publish: publish,
	}
}

// endpointCacheKey is the coordinate pair keying the shared SME->hub /
// receiver->satellite caches; the pair is compared as float64 values,
// not stringified.
type endpointCacheKey struct {
	lat, lon float64
}

func coordKey(lat, lon float64) endpointCacheKey {
	return endpointCacheKey{lat: lat, lon: lon}
}

// Handle processes pairs independently: a failure on one pair does not
// abort the others (spec.md §4.4). Each pair commits in its own
// transaction (spec.md §5 "commits each order's legs in its own
// transaction").
func (h *BatchAssignHandler) Handle(ctx context.Context, pairs []BatchPair) []BatchResult {
	results := make([]BatchResult, len(pairs))

	var mu sync.Mutex
	entryHubCache := map[endpointCacheKey]uuid.UUID{}
	exitSatCache := map[endpointCacheKey]uuid.UUID{}

	for i, pair := range pairs {
		err := h.assignOne(ctx, pair, &mu, entryHubCache, exitSatCache)
		results[i] = BatchResult{OrderID: pair.OrderID, Err: err}
		if err != nil {
			h.log.Warn("batch assignment pair failed", "order_id", pair.OrderID, "error", err)
		}
	}

	return results
}

func (h *BatchAssignHandler) assignOne(
	ctx context.Context,
	pair BatchPair,
	mu *sync.Mutex,
	entryHubCache, exitSatCache map[endpointCacheKey]uuid.UUID,
) (err error) {
	ctx, err = h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("dispatch: begin transaction: %w", err)
	}
	defer func() { _ = h.uow.Rollback(ctx) }()

	order, err := h.orders.LoadForUpdate(ctx, pair.OrderID)
	if err != nil {
		return err
	}

	switch order.Status() {
	case journey.OrderStatusPending, journey.OrderStatusInTransit:
	default:
		return &ports.InvalidStateError{Reason: fmt.Sprintf("order %s not assignable from status %s", pair.OrderID, order.Status())}
	}

	existingLegs, err := h.legs.ListByOrder(ctx, pair.OrderID)
	if err != nil {
		return err
	}
	if len(existingLegs) > 0 {
		return ErrLegsAlreadyExist
	}

	sme, err := h.smes.Get(ctx, order.SmeID())
	if err != nil {
		return err
	}
	smeLat, smeLon, ok := sme.Coordinates()
	if !ok {
		return &ports.ValidationError{Field: "sme.coordinates", Reason: "sme has no coordinates"}
	}

	assignedCourier, err := h.couriers.GetForUpdate(ctx, pair.CourierID)
	if err != nil {
		return err
	}
	if !pickupAvailable(assignedCourier.Status()) {
		return &ErrCourierUnavailable{CourierID: pair.CourierID.String(), Status: assignedCourier.Status().String()}
	}
	if !assignedCourier.Vehicle().CompatibleWithLeg(journey.LegTypePickup.String()) {
		return &ErrIncompatibleVehicle{Vehicle: assignedCourier.Vehicle().String(), LegType: journey.LegTypePickup.String()}
	}

	result, err := h.planWithSharedCache(ctx, order, smeLat, smeLon, mu, entryHubCache, exitSatCache)
	if err != nil {
		return err
	}

	pickupLeg := result.Legs[0]
	pickupLeg.SetAssignedCourier(&pair.CourierID)

	if err := h.legs.SaveAll(ctx, result.Legs); err != nil {
		return err
	}

	order.SetTotalDistanceKm(result.TotalDistanceKm)
	if order.Status() == journey.OrderStatusPending {
		if err := order.MarkPickupConfirmed(ctx, nowFn()); err != nil {
			return err
		}
	}
	if err := h.orders.Save(ctx, order); err != nil {
		return err
	}

	if assignedCourier.Status() != courier.StatusDelivering {
		if err := assignedCourier.AssignFirstLeg(ctx); err != nil {
			return err
		}
	}
	if err := h.couriers.Save(ctx, assignedCourier); err != nil {
		return err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("dispatch: commit transaction: %w", err)
	}

	for _, ev := range order.GetDomainEvents() {
		if perr := h.publish.Publish(ctx, ev); perr != nil {
			h.log.Warn("failed to publish order event", "error", perr)
		}
	}
	order.ClearDomainEvents()

	return nil
}

// planWithSharedCache performs endpoint selection once per distinct
// coordinate, reusing results across pairs that share an SME or receiver
// location (spec.md §4.4).
func (h *BatchAssignHandler) planWithSharedCache(
	ctx context.Context,
	order *journey.Order,
	smeLat, smeLon float64,
	mu *sync.Mutex,
	entryHubCache, exitSatCache map[endpointCacheKey]uuid.UUID,
) (*planner.Result, error) {
	receiverLat, receiverLon, ok := order.ReceiverCoordinates()
	if !ok {
		return nil, planner.ErrMissingCoordinates
	}

	mu.Lock()
	hubID, hubHit := entryHubCache[coordKey(smeLat, smeLon)]
	satID, satHit := exitSatCache[coordKey(receiverLat, receiverLon)]
	mu.Unlock()

	if hubHit && satHit {
		return h.planner.PlanWithEndpoints(ctx, order, hubID, satID, smeLat, smeLon, uuid.New)
	}

	result, err := h.planner.Plan(ctx, order, smeLat, smeLon, uuid.New)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	entryHubCache[coordKey(smeLat, smeLon)] = result.EntryHub.ID()
	exitSatCache[coordKey(receiverLat, receiverLon)] = result.ExitSatellite.ID()
	mu.Unlock()

	return result, nil
}
