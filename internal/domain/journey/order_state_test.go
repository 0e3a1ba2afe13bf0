package journey_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
)

func newTestOrder() *journey.Order {
	lat, lon := 10.80, 106.73
	return journey.NewOrder(uuid.New(), "ORD-1", uuid.New(), "Alice", "0900000000", "1 Main St", &lat, &lon, 1.2, uuid.New(), uuid.New())
}

func TestOrder_HappyPathThreeLeg(t *testing.T) {
	o := newTestOrder()
	now := time.Now()

	require.NoError(t, o.MarkPickupConfirmed(context.Background(), now))
	assert.Equal(t, journey.OrderStatusInTransit, o.Status())

	require.NoError(t, o.MarkAtWarehouse(context.Background(), now))
	assert.Equal(t, journey.OrderStatusAtWarehouse, o.Status())

	require.NoError(t, o.MarkInTransitAgain(context.Background(), now))
	assert.Equal(t, journey.OrderStatusInTransit, o.Status())

	require.NoError(t, o.MarkAtWarehouse(context.Background(), now))
	require.NoError(t, o.MarkDelivering(context.Background(), now))
	assert.Equal(t, journey.OrderStatusDelivering, o.Status())

	require.NoError(t, o.MarkCompleted(context.Background(), now))
	assert.Equal(t, journey.OrderStatusCompleted, o.Status())

	events := o.GetDomainEvents()
	assert.Len(t, events, 6)
}

func TestOrder_HappyPathTwoLeg(t *testing.T) {
	o := newTestOrder()
	now := time.Now()

	require.NoError(t, o.MarkPickupConfirmed(context.Background(), now))
	require.NoError(t, o.MarkAtWarehouse(context.Background(), now))
	require.NoError(t, o.MarkDelivering(context.Background(), now)) // no transfer leg
	require.NoError(t, o.MarkCompleted(context.Background(), now))
	assert.Equal(t, journey.OrderStatusCompleted, o.Status())
}

func TestOrder_CannotCompleteBeforeDelivering(t *testing.T) {
	o := newTestOrder()
	err := o.MarkCompleted(context.Background(), time.Now())
	assert.Error(t, err)
	assert.IsType(t, &journey.ErrInvalidOrderTransition{}, err)
}

func TestOrder_TerminalStateRejectsFurtherTransitions(t *testing.T) {
	o := newTestOrder()
	now := time.Now()
	require.NoError(t, o.Cancel(context.Background(), now))
	assert.Equal(t, journey.OrderStatusCancelled, o.Status())

	err := o.MarkPickupConfirmed(context.Background(), now)
	assert.Error(t, err)
	assert.IsType(t, &journey.ErrOrderTerminalState{}, err)
}

func TestLeg_EndpointInvariantRejectsBothOrigins(t *testing.T) {
	smeID, whID := uuid.New(), uuid.New()
	_, err := journey.NewLeg(uuid.New(), uuid.New(), 1, journey.LegTypePickup, &smeID, &whID, &whID, false)
	assert.ErrorIs(t, err, journey.ErrEndpointInvariant)
}

func TestLeg_EndpointInvariantRejectsDestinationBothKinds(t *testing.T) {
	smeID, whID := uuid.New(), uuid.New()
	_, err := journey.NewLeg(uuid.New(), uuid.New(), 1, journey.LegTypePickup, &smeID, nil, &whID, true)
	assert.ErrorIs(t, err, journey.ErrEndpointInvariant)
}

func TestLeg_StartFinishLifecycle(t *testing.T) {
	smeID, whID := uuid.New(), uuid.New()
	leg, err := journey.NewLeg(uuid.New(), uuid.New(), 1, journey.LegTypePickup, &smeID, nil, &whID, false)
	require.NoError(t, err)

	require.NoError(t, leg.Start(context.Background(), time.Now()))
	assert.Equal(t, journey.LegStatusInProgress, leg.Status())

	require.NoError(t, leg.Finish(context.Background(), time.Now()))
	assert.Equal(t, journey.LegStatusCompleted, leg.Status())

	err = leg.Cancel(context.Background())
	assert.Error(t, err)
}

func TestLeg_CancelOnlyWhilePending(t *testing.T) {
	smeID, whID := uuid.New(), uuid.New()
	leg, err := journey.NewLeg(uuid.New(), uuid.New(), 1, journey.LegTypePickup, &smeID, nil, &whID, false)
	require.NoError(t, err)

	require.NoError(t, leg.Cancel(context.Background()))
	assert.Equal(t, journey.LegStatusCancelled, leg.Status())
}

func TestValidateLegSequence_TwoLeg(t *testing.T) {
	orderID := uuid.New()
	smeID, whID := uuid.New(), uuid.New()

	pickup, _ := journey.NewLeg(uuid.New(), orderID, 1, journey.LegTypePickup, &smeID, nil, &whID, false)
	delivery, _ := journey.NewLeg(uuid.New(), orderID, 2, journey.LegTypeDelivery, nil, &whID, nil, true)

	assert.NoError(t, journey.ValidateLegSequence([]*journey.Leg{pickup, delivery}))
}

func TestValidateLegSequence_ThreeLegChainMismatch(t *testing.T) {
	orderID := uuid.New()
	smeID, hub, sat := uuid.New(), uuid.New(), uuid.New()
	otherHub := uuid.New()

	pickup, _ := journey.NewLeg(uuid.New(), orderID, 1, journey.LegTypePickup, &smeID, nil, &hub, false)
	transfer, _ := journey.NewLeg(uuid.New(), orderID, 2, journey.LegTypeTransfer, nil, &otherHub, &sat, false)
	delivery, _ := journey.NewLeg(uuid.New(), orderID, 3, journey.LegTypeDelivery, nil, &sat, nil, true)

	err := journey.ValidateLegSequence([]*journey.Leg{pickup, transfer, delivery})
	assert.ErrorIs(t, err, journey.ErrEndpointInvariant)
}

func TestCanCompleteLeg_OutOfOrder(t *testing.T) {
	orderID := uuid.New()
	smeID, hub, sat := uuid.New(), uuid.New(), uuid.New()

	pickup, _ := journey.NewLeg(uuid.New(), orderID, 1, journey.LegTypePickup, &smeID, nil, &hub, false)
	transfer, _ := journey.NewLeg(uuid.New(), orderID, 2, journey.LegTypeTransfer, nil, &hub, &sat, false)
	all := []*journey.Leg{pickup, transfer}

	err := journey.CanCompleteLeg(transfer, all)
	var outOfOrder *journey.ErrOutOfOrder
	assert.ErrorAs(t, err, &outOfOrder)
}
