package dispatch

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"
	"github.com/stretchr/testify/require"

	"github.com/parcelhub/dispatch-engine/internal/domain/barcode"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

type fakeUoW struct{}

func (fakeUoW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (fakeUoW) Commit(ctx context.Context) error                   { return nil }
func (fakeUoW) Rollback(ctx context.Context) error                 { return nil }

// fakeOrderRepo is an in-memory OrderRepository recording Delete calls.
type fakeOrderRepo struct {
	orders map[uuid.UUID]*journey.Order
}

func (f *fakeOrderRepo) Load(ctx context.Context, orderID uuid.UUID) (*journey.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return o, nil
}
func (f *fakeOrderRepo) LoadByCode(ctx context.Context, orderCode string) (*journey.Order, error) {
	return nil, ports.ErrNotFound
}
func (f *fakeOrderRepo) LoadForUpdate(ctx context.Context, orderID uuid.UUID) (*journey.Order, error) {
	return f.Load(ctx, orderID)
}
func (f *fakeOrderRepo) Save(ctx context.Context, order *journey.Order) error { return nil }
func (f *fakeOrderRepo) Delete(ctx context.Context, orderID uuid.UUID) error {
	delete(f.orders, orderID)
	return nil
}
func (f *fakeOrderRepo) ListPendingByArea(ctx context.Context, areaID uuid.UUID) ([]*journey.Order, error) {
	return nil, nil
}

var _ ports.OrderRepository = (*fakeOrderRepo)(nil)

// fakeLegRepo is an in-memory LegRepository keyed by order.
type fakeLegRepo struct {
	byOrder map[uuid.UUID][]*journey.Leg
}

func (f *fakeLegRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*journey.Leg, error) {
	return f.byOrder[orderID], nil
}
func (f *fakeLegRepo) SaveAll(ctx context.Context, legs []*journey.Leg) error { return nil }
func (f *fakeLegRepo) Save(ctx context.Context, leg *journey.Leg) error      { return nil }
func (f *fakeLegRepo) Get(ctx context.Context, legID uuid.UUID) (*journey.Leg, error) {
	return nil, ports.ErrNotFound
}
func (f *fakeLegRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	delete(f.byOrder, orderID)
	return nil
}
func (f *fakeLegRepo) ListByCourier(ctx context.Context, courierID uuid.UUID, statuses []journey.LegStatus) ([]*journey.Leg, error) {
	return nil, nil
}
func (f *fakeLegRepo) ListPendingTransfersReadyInArea(ctx context.Context, areaID uuid.UUID) ([]*journey.Leg, error) {
	return nil, nil
}
func (f *fakeLegRepo) ListCompletedPickupsSince(ctx context.Context, warehouseID uuid.UUID) (int, error) {
	return 0, nil
}

var _ ports.LegRepository = (*fakeLegRepo)(nil)

// fakeBarcodeRepo is an in-memory BarcodeRepository keyed by order.
type fakeBarcodeRepo struct {
	byOrder map[uuid.UUID]*barcode.Barcode
}

func (f *fakeBarcodeRepo) Save(ctx context.Context, b *barcode.Barcode) error {
	f.byOrder[b.OrderID()] = b
	return nil
}
func (f *fakeBarcodeRepo) FindByCodeValue(ctx context.Context, codeValue string) (*barcode.Barcode, error) {
	for _, b := range f.byOrder {
		if b.CodeValue() == codeValue {
			return b, nil
		}
	}
	return nil, ports.ErrNotFound
}
func (f *fakeBarcodeRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	delete(f.byOrder, orderID)
	return nil
}

var _ ports.BarcodeRepository = (*fakeBarcodeRepo)(nil)

func newTestLoggerDispatch(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

// TestDeleteOrderHandler_RemovesLegsAndBarcode exercises the round-trip
// law: creating a 3-leg journey then deleting the order removes exactly
// 3 legs and 1 barcode (spec.md §8).
func TestDeleteOrderHandler_RemovesLegsAndBarcode(t *testing.T) {
	orderID := uuid.New()
	smeID := uuid.New()
	areaID := uuid.New()
	barcodeID := uuid.New()
	receiverLat, receiverLon := 10.8, 106.7

	order := journey.NewOrder(orderID, "ORD-1", smeID, "Jane", "555", "addr", &receiverLat, &receiverLon, 2.0, barcodeID, areaID)

	hubID, satID := uuid.New(), uuid.New()
	pickup, err := journey.NewLeg(uuid.New(), orderID, 1, journey.LegTypePickup, &smeID, nil, &hubID, false)
	require.NoError(t, err)
	transfer, err := journey.NewLeg(uuid.New(), orderID, 2, journey.LegTypeTransfer, nil, &hubID, &satID, false)
	require.NoError(t, err)
	delivery, err := journey.NewLeg(uuid.New(), orderID, 3, journey.LegTypeDelivery, nil, &satID, nil, true)
	require.NoError(t, err)
	legs := []*journey.Leg{pickup, transfer, delivery}

	bc, err := barcode.New(barcodeID, orderID, "CODE-1")
	require.NoError(t, err)

	orders := &fakeOrderRepo{orders: map[uuid.UUID]*journey.Order{orderID: order}}
	legRepo := &fakeLegRepo{byOrder: map[uuid.UUID][]*journey.Leg{orderID: legs}}
	barcodes := &fakeBarcodeRepo{byOrder: map[uuid.UUID]*barcode.Barcode{orderID: bc}}

	handler := NewDeleteOrderHandler(newTestLoggerDispatch(t), fakeUoW{}, orders, legRepo, barcodes)

	require.NoError(t, handler.Handle(context.Background(), orderID))

	_, err = orders.Load(context.Background(), orderID)
	require.ErrorIs(t, err, ports.ErrNotFound)

	remainingLegs, err := legRepo.ListByOrder(context.Background(), orderID)
	require.NoError(t, err)
	require.Empty(t, remainingLegs)

	_, err = barcodes.FindByCodeValue(context.Background(), "CODE-1")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeleteOrderHandler_UnknownOrderReturnsNotFound(t *testing.T) {
	orders := &fakeOrderRepo{orders: map[uuid.UUID]*journey.Order{}}
	legRepo := &fakeLegRepo{byOrder: map[uuid.UUID][]*journey.Leg{}}
	barcodes := &fakeBarcodeRepo{byOrder: map[uuid.UUID]*barcode.Barcode{}}

	handler := NewDeleteOrderHandler(newTestLoggerDispatch(t), fakeUoW{}, orders, legRepo, barcodes)

	err := handler.Handle(context.Background(), uuid.New())
	require.ErrorIs(t, err, ports.ErrNotFound)
}
