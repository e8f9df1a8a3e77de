package task_handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/dtos/task_dto"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/internal/handlers"
	"github.com/xenn00/collab-hub/internal/queue"
)

const defaultJobTTL = 10 * time.Minute

type ProjectAuthorizer interface {
	AuthorizeProject(ctx context.Context, projectID, userID string) *app_error.AppError
}

// TaskHandler accepts task notices from the task controllers and queues them
// for the worker pool to publish into the project room.
type TaskHandler struct {
	Producer   queue.Producer
	Authorizer ProjectAuthorizer
	Validate   *validator.Validate
	MaxRetry   int
	JobTTL     time.Duration
}

func NewTaskHandler(producer queue.Producer, authorizer ProjectAuthorizer, maxRetry int) *TaskHandler {
	return &TaskHandler{
		Producer:   producer,
		Authorizer: authorizer,
		Validate:   validator.New(),
		MaxRetry:   maxRetry,
		JobTTL:     defaultJobTTL,
	}
}

func (h *TaskHandler) PublishTaskEvent(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID, appErr := handlers.UserID(r)
	if appErr != nil {
		return appErr
	}
	projectID := chi.URLParam(r, "projectId")

	var req task_dto.TaskEventRequest
	if appErr := handlers.DecodeJSON(r, &req); appErr != nil {
		return appErr
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.Invalid(fmt.Sprintf("Invalid fields: %v", err))
	}

	if appErr := h.Authorizer.AuthorizeProject(r.Context(), projectID, userID); appErr != nil {
		return appErr
	}

	job := queue.NewJob(queue.JobTypeTaskEvent, task_dto.TaskEventJob{
		Event:     req.Event,
		ProjectID: projectID,
		Task:      req.Task,
		TaskID:    req.TaskID,
	}, h.MaxRetry, h.JobTTL)

	if err := h.Producer.Enqueue(r.Context(), job); err != nil {
		log.Error().Err(err).Str("projectID", projectID).Str("event", req.Event).Msg("failed to enqueue task event")
		return app_error.NewAppError(http.StatusInternalServerError, "Failed to queue task event", "queue")
	}

	handlers.Respond(w, r, http.StatusAccepted, "task event queued", task_dto.TaskEventResponse{
		JobID:     job.ID,
		Event:     req.Event,
		ProjectID: projectID,
	})
	return nil
}
