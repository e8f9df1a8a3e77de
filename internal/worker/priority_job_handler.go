package worker

import (
	"context"
	"fmt"

	"github.com/xenn00/collab-hub/internal/queue"
	worker_handler "github.com/xenn00/collab-hub/internal/worker/worker-handler"
)

// Dispatcher routes a job to the handler for its type.
type Dispatcher struct {
	handler *worker_handler.WorkerHandler
}

func NewDispatcher(broadcaster worker_handler.TaskBroadcaster) *Dispatcher {
	return &Dispatcher{handler: worker_handler.NewWorkerHandler(broadcaster)}
}

func (d *Dispatcher) HandleJob(ctx context.Context, job queue.Job) error {
	switch job.Type {
	case queue.JobTypeTaskEvent:
		return d.handler.HandleTaskEvent(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
