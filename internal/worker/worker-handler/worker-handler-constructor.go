package worker_handler

import (
	"context"

	"github.com/xenn00/collab-hub/internal/websocket"
)

// TaskBroadcaster publishes a server-originated task notice.
type TaskBroadcaster interface {
	PublishTaskEvent(ctx context.Context, kind websocket.EventKind, projectID string, data any) error
}

type WorkerHandler struct {
	Broadcaster TaskBroadcaster
}

func NewWorkerHandler(broadcaster TaskBroadcaster) *WorkerHandler {
	return &WorkerHandler{
		Broadcaster: broadcaster,
	}
}
