package user_repo

import (
	"context"

	"github.com/xenn00/collab-hub/internal/entity"
	app_error "github.com/xenn00/collab-hub/internal/errors"
)

type UserRepoContract interface {
	FindProfileByID(ctx context.Context, userID string) (*entity.UserProfile, *app_error.AppError)
	FindProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*entity.UserProfile, *app_error.AppError)
}
