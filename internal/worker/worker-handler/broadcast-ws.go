package worker_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xenn00/collab-hub/internal/dtos/task_dto"
	"github.com/xenn00/collab-hub/internal/websocket"
)

// HandleTaskEvent relays a queued task notice into the project's room. A
// deletion carries only the task id; other events carry the task verbatim.
func (wh *WorkerHandler) HandleTaskEvent(ctx context.Context, raw json.RawMessage) error {
	var payload task_dto.TaskEventJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid task event payload: %w", err)
	}

	kind := websocket.EventKind(payload.Event)
	var data any = payload.Task
	if kind == websocket.EventTaskDeleted {
		data = payload.TaskID
	} else if len(payload.Task) == 0 {
		return fmt.Errorf("%s without task body", payload.Event)
	}

	if err := wh.Broadcaster.PublishTaskEvent(ctx, kind, payload.ProjectID, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", payload.Event, err)
	}
	return nil
}
