package agent_workflow

import (
	"github.com/shortlink-org/go-sdk/logger"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// TaskQueue is the Temporal task queue this service's worker polls,
// grounded on oms/internal/workers/order/order_worker's one-queue-per-
// worker convention.
const TaskQueue = "dispatch-agent-tick"

// NewWorker builds the Temporal worker hosting the Tick workflow and its
// activities, grounded on oms/internal/workers/order/order_worker.New.
func NewWorker(c client.Client, activities *Activities, log logger.Logger) worker.Worker {
	w := worker.New(c, TaskQueue, worker.Options{})

	w.RegisterWorkflow(Tick)
	w.RegisterActivity(activities)

	log.Info("agent_workflow: worker registered", "task_queue", TaskQueue)

	return w
}
