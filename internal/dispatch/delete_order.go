package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// DeleteOrderHandler removes an order and everything it exclusively
// owns (spec.md §3 "An Order exclusively owns its Barcode and its
// ordered sequence of JourneyLegs. Deleting an order deletes both.").
// Legs are removed before the order row and the barcode after it, since
// legs.order_id references orders, orders.barcode_id references
// barcodes, and neither foreign key carries ON DELETE CASCADE.
type DeleteOrderHandler struct {
	log      logger.Logger
	uow      ports.UnitOfWork
	orders   ports.OrderRepository
	legs     ports.LegRepository
	barcodes ports.BarcodeRepository
}

// NewDeleteOrderHandler constructs a DeleteOrderHandler.
func NewDeleteOrderHandler(log logger.Logger, uow ports.UnitOfWork, orders ports.OrderRepository, legs ports.LegRepository, barcodes ports.BarcodeRepository) *DeleteOrderHandler {
	return &DeleteOrderHandler{log: log, uow: uow, orders: orders, legs: legs, barcodes: barcodes}
}

// Handle deletes orderID along with its legs and barcode in one
// transaction.
func (h *DeleteOrderHandler) Handle(ctx context.Context, orderID uuid.UUID) error {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("dispatch: begin transaction: %w", err)
	}
	defer func() { _ = h.uow.Rollback(ctx) }()

	if _, err := h.orders.Load(ctx, orderID); err != nil {
		return err
	}

	if err := h.legs.DeleteByOrder(ctx, orderID); err != nil {
		return err
	}
	if err := h.orders.Delete(ctx, orderID); err != nil {
		return err
	}
	if err := h.barcodes.DeleteByOrder(ctx, orderID); err != nil {
		return err
	}

	h.log.Info("order deleted", "order_id", orderID)

	return h.uow.Commit(ctx)
}
