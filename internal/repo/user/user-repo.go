package user_repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/entity"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/internal/utils"
	"github.com/xenn00/collab-hub/state"
	"gorm.io/gorm"
)

// profileColumns never include password_hash.
var profileColumns = []string{"id", "name", "email", "avatar"}

type UserRepo struct {
	AppState *state.AppState
	CacheTTL time.Duration
}

// NewUserRepo builds the profile lookup. A zero cacheTTL, or a state without
// Redis, disables the profile cache.
func NewUserRepo(appState *state.AppState, cacheTTL time.Duration) UserRepoContract {
	return &UserRepo{
		AppState: appState,
		CacheTTL: cacheTTL,
	}
}

func profileCacheKey(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

// FindProfileByID reads through the profile cache. Unknown or inactive users
// are reported as 404 and are not cached.
func (r *UserRepo) FindProfileByID(ctx context.Context, userID string) (*entity.UserProfile, *app_error.AppError) {
	return utils.Remember(ctx, r.AppState.Redis, profileCacheKey(userID), r.CacheTTL, func(ctx context.Context) (*entity.UserProfile, *app_error.AppError) {
		var profile entity.UserProfile
		err := r.AppState.DB.WithContext(ctx).
			Model(&entity.User{}).
			Select(profileColumns).
			Where("id = ? AND is_active = ?", userID, true).
			Take(&profile).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, app_error.NewAppError(http.StatusNotFound, "user not found", "not-found")
			}
			log.Error().Err(err).Str("userID", userID).Msg("failed to fetch user profile")
			return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to fetch user", "db-error")
		}
		return &profile, nil
	})
}

func (r *UserRepo) FindProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*entity.UserProfile, *app_error.AppError) {
	profiles := make(map[string]*entity.UserProfile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	var rows []*entity.UserProfile
	if err := r.AppState.DB.WithContext(ctx).
		Model(&entity.User{}).
		Select(profileColumns).
		Where("id IN ?", userIDs).
		Find(&rows).Error; err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to fetch users", "db-error")
	}

	for _, p := range rows {
		profiles[p.ID] = p
	}
	return profiles, nil
}
