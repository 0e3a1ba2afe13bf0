// Package agent_workflow wraps the Optimization Agent's tick (C6) in a
// Temporal cron workflow, grounded on
// oms/internal/workers/order/workflow/workflow.go's activity/workflow
// split. This package and NewWorker only register the workflow and its
// activities; no Temporal Schedule or cron trigger is created in code.
package agent_workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/agent"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// Activities bundles the dependencies the workflow's activities need.
type Activities struct {
	driver *agent.Driver
	areas  ports.AreaRepository
}

// NewActivities constructs an Activities.
func NewActivities(driver *agent.Driver, areas ports.AreaRepository) *Activities {
	return &Activities{driver: driver, areas: areas}
}

// ListActiveAreas is the activity that resolves which areas this cron
// run should tick.
func (a *Activities) ListActiveAreas(ctx context.Context) ([]uuid.UUID, error) {
	active, err := a.areas.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(active))
	for _, ar := range active {
		ids = append(ids, ar.ID())
	}

	return ids, nil
}

// TickArea is the activity that runs one area's optimization pass.
func (a *Activities) TickArea(ctx context.Context, areaID uuid.UUID) (agent.TickResult, error) {
	return a.driver.Tick(ctx, areaID)
}
