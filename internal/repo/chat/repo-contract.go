package chat_repo

import (
	"context"
	"time"

	"github.com/xenn00/collab-hub/internal/entity"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ChatRepoContract interface {
	CreateMessage(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError)
	FindMessageByID(ctx context.Context, messageID bson.ObjectID) (*entity.Message, *app_error.AppError)
	ListMessages(ctx context.Context, projectID string, limit int, before *time.Time) ([]*entity.Message, *app_error.AppError)
}
