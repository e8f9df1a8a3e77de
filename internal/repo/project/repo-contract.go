package project_repo

import (
	"context"

	app_error "github.com/xenn00/collab-hub/internal/errors"
)

type ProjectRepoContract interface {
	ProjectExists(ctx context.Context, projectID string) (bool, *app_error.AppError)
	IsMember(ctx context.Context, projectID, userID string) (bool, *app_error.AppError)
}
