package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	QueueKey = "priority_queue"
	DLQKey   = "priority_queue_dlq"

	JobTypeTaskEvent = "broadcast_task_event"
)

type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
	RunAt     int64           `json:"run_at"`
	CreatedAt int64           `json:"created_at"`
	ExpireAt  int64           `json:"expired_at"`
}

// NewJob builds a job that is due immediately and expires after ttl.
func NewJob(jobType string, payload any, maxRetry int, ttl time.Duration) Job {
	now := time.Now()
	return Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   MustMarshal(payload),
		MaxRetry:  maxRetry,
		RunAt:     now.Unix(),
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(ttl).Unix(),
	}
}

func (j Job) Expired(now time.Time) bool {
	return j.ExpireAt > 0 && now.Unix() > j.ExpireAt
}

func MustMarshal(payload any) json.RawMessage {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	return b
}
