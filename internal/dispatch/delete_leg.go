package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// DeleteLegHandler removes a single PENDING leg (spec.md §6
// "DELETE /dispatch/legs/{leg_id} - rejected if leg is IN_PROGRESS or
// COMPLETED").
type DeleteLegHandler struct {
	log  logger.Logger
	uow  ports.UnitOfWork
	legs ports.LegRepository
}

// NewDeleteLegHandler constructs a DeleteLegHandler.
func NewDeleteLegHandler(log logger.Logger, uow ports.UnitOfWork, legs ports.LegRepository) *DeleteLegHandler {
	return &DeleteLegHandler{log: log, uow: uow, legs: legs}
}

// Handle deletes legID.
func (h *DeleteLegHandler) Handle(ctx context.Context, legID uuid.UUID) error {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("dispatch: begin transaction: %w", err)
	}
	defer func() { _ = h.uow.Rollback(ctx) }()

	leg, err := h.legs.Get(ctx, legID)
	if err != nil {
		return err
	}

	if leg.Status() == journey.LegStatusInProgress || leg.Status() == journey.LegStatusCompleted {
		return &ErrLegCompleted{LegID: legID.String(), Status: leg.Status().String()}
	}

	if err := leg.Cancel(ctx); err != nil {
		return err
	}
	if err := h.legs.Save(ctx, leg); err != nil {
		return err
	}

	return h.uow.Commit(ctx)
}
