package worker_handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/collab-hub/internal/dtos/task_dto"
	"github.com/xenn00/collab-hub/internal/websocket"
)

type published struct {
	kind      websocket.EventKind
	projectID string
	data      any
}

type fakeBroadcaster struct {
	calls []published
	err   error
}

func (f *fakeBroadcaster) PublishTaskEvent(_ context.Context, kind websocket.EventKind, projectID string, data any) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, published{kind: kind, projectID: projectID, data: data})
	return nil
}

func marshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleTaskEvent(t *testing.T) {
	b := &fakeBroadcaster{}
	wh := NewWorkerHandler(b)

	task := json.RawMessage(`{"id":"t1","title":"Write docs"}`)
	require.NoError(t, wh.HandleTaskEvent(context.Background(), marshal(t, task_dto.TaskEventJob{
		Event: "taskUpdated", ProjectID: "p1", Task: task,
	})))
	require.NoError(t, wh.HandleTaskEvent(context.Background(), marshal(t, task_dto.TaskEventJob{
		Event: "taskDeleted", ProjectID: "p1", TaskID: "t1",
	})))

	require.Len(t, b.calls, 2)
	assert.Equal(t, websocket.EventTaskUpdated, b.calls[0].kind)
	assert.Equal(t, "p1", b.calls[0].projectID)
	assert.JSONEq(t, string(task), string(b.calls[0].data.(json.RawMessage)))
	assert.Equal(t, websocket.EventTaskDeleted, b.calls[1].kind)
	assert.Equal(t, "t1", b.calls[1].data)
}

func TestHandleTaskEvent_Errors(t *testing.T) {
	wh := NewWorkerHandler(&fakeBroadcaster{err: errors.New("hub is not running")})

	err := wh.HandleTaskEvent(context.Background(), json.RawMessage(`{"event":`))
	assert.ErrorContains(t, err, "invalid task event payload")

	err = wh.HandleTaskEvent(context.Background(), marshal(t, task_dto.TaskEventJob{Event: "taskCreated", ProjectID: "p1", Task: json.RawMessage(`{}`)}))
	assert.ErrorContains(t, err, "hub is not running")
}
