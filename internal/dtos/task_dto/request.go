package task_dto

import "encoding/json"

// TaskEventRequest is posted by the task controllers after a task changes.
type TaskEventRequest struct {
	Event  string          `json:"event" validate:"required,oneof=taskCreated taskUpdated taskDeleted"`
	Task   json.RawMessage `json:"task,omitempty" validate:"required_unless=Event taskDeleted"`
	TaskID string          `json:"taskId,omitempty" validate:"required_if=Event taskDeleted"`
}

// TaskEventJob is the queued form of a task notice.
type TaskEventJob struct {
	Event     string          `json:"event"`
	ProjectID string          `json:"projectId"`
	Task      json.RawMessage `json:"task,omitempty"`
	TaskID    string          `json:"taskId,omitempty"`
}

type TaskEventResponse struct {
	JobID     string `json:"job_id"`
	Event     string `json:"event"`
	ProjectID string `json:"project_id"`
}
