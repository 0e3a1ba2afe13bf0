package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// TickResult is the outcome of one area's optimization tick, the body of
// the /ai/optimize response (spec.md §6).
type TickResult struct {
	AreaID       uuid.UUID
	Observations []TickObservation
	Err          string
}

// Tick runs one optimization pass for a single area (spec.md §4.6). Used
// directly by /ai/optimize when a single area_id is given.
func (d *Driver) Tick(ctx context.Context, areaID uuid.UUID) (TickResult, error) {
	observations, err := d.RunTick(ctx, areaID)
	if err != nil {
		return TickResult{AreaID: areaID, Observations: observations, Err: err.Error()}, fmt.Errorf("agent: tick area %s: %w", areaID, err)
	}
	return TickResult{AreaID: areaID, Observations: observations}, nil
}

// TickAllActive runs a tick for every ACTIVE area in turn (spec.md §4.6
// "the control loop runs per ACTIVE area"). One area's failure does not
// stop the others; its error is carried in its own TickResult.
func (d *Driver) TickAllActive(ctx context.Context, areas ports.AreaRepository) ([]TickResult, error) {
	active, err := areas.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent: list active areas: %w", err)
	}

	results := make([]TickResult, 0, len(active))
	for _, a := range active {
		result, tickErr := d.Tick(ctx, a.ID())
		if tickErr != nil {
			d.log.Warn("agent: area tick failed", "area_id", a.ID(), "error", tickErr)
		}
		results = append(results, result)
	}

	return results, nil
}
