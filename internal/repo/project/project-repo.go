package project_repo

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/entity"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/state"
)

// ProjectRoomPrefix prefixes the room that carries a project's task notices.
const ProjectRoomPrefix = "project-"

type ProjectRepo struct {
	AppState *state.AppState
}

func NewProjectRepo(appState *state.AppState) ProjectRepoContract {
	return &ProjectRepo{
		AppState: appState,
	}
}

// ProjectRoom returns the task notice room for a project.
func ProjectRoom(projectID string) string {
	return ProjectRoomPrefix + projectID
}

// ProjectIDFromRoom maps a room key to the project it may belong to. Both the
// bare project id and the prefixed task room resolve to the same project.
func ProjectIDFromRoom(roomID string) string {
	return strings.TrimPrefix(roomID, ProjectRoomPrefix)
}

func (r *ProjectRepo) ProjectExists(ctx context.Context, projectID string) (bool, *app_error.AppError) {
	var count int64
	if err := r.AppState.DB.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ?", projectID).
		Count(&count).Error; err != nil {
		log.Error().Err(err).Str("projectID", projectID).Msg("failed to look up project")
		return false, app_error.NewAppError(http.StatusInternalServerError, "failed to look up project", "db-error")
	}
	return count > 0, nil
}

func (r *ProjectRepo) IsMember(ctx context.Context, projectID, userID string) (bool, *app_error.AppError) {
	var count int64
	if err := r.AppState.DB.WithContext(ctx).
		Model(&entity.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		log.Error().Err(err).Str("projectID", projectID).Str("userID", userID).Msg("failed to look up project membership")
		return false, app_error.NewAppError(http.StatusInternalServerError, "failed to look up project membership", "db-error")
	}
	return count > 0, nil
}
