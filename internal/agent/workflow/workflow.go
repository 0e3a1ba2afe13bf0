package agent_workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/parcelhub/dispatch-engine/internal/agent"
)

// Tick is a Temporal workflow that runs one optimization pass across
// every ACTIVE area. Deploy it on a Temporal Schedule (e.g. every two
// minutes) rather than encoding the cadence in the workflow itself, so
// operators can retune the cadence without a code change.
func Tick(ctx workflow.Context) error {
	logger := workflow.GetLogger(ctx)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 45 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var activities *Activities

	var areaIDs []uuid.UUID
	if err := workflow.ExecuteActivity(ctx, activities.ListActiveAreas).Get(ctx, &areaIDs); err != nil {
		return fmt.Errorf("agent_workflow: list active areas: %w", err)
	}

	workflow.SetCurrentDetails(ctx, fmt.Sprintf("ticking %d active area(s)", len(areaIDs)))

	var failed int
	for _, areaID := range areaIDs {
		var result agent.TickResult
		if err := workflow.ExecuteActivity(ctx, activities.TickArea, areaID).Get(ctx, &result); err != nil {
			logger.Error("area tick failed", "area_id", areaID, "error", err)
			failed++
			continue
		}
		if result.Err != "" {
			logger.Warn("area tick returned an error", "area_id", areaID, "error", result.Err)
		}
	}

	if failed > 0 {
		workflow.SetCurrentDetails(ctx, fmt.Sprintf("completed with %d failed area(s)", failed))
	}

	return nil
}
