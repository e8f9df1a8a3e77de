package chat_repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/entity"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/state"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const messagesCollection = "messages"

type ChatRepo struct {
	AppState *state.AppState
}

func NewChatRepo(appState *state.AppState) ChatRepoContract {
	return &ChatRepo{
		AppState: appState,
	}
}

func (r *ChatRepo) collection() *mongo.Collection {
	return r.AppState.Database().Collection(messagesCollection)
}

func (r *ChatRepo) CreateMessage(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError) {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	if _, err := r.collection().InsertOne(ctx, msg); err != nil {
		log.Error().Err(err).Str("projectID", msg.ProjectID).Msg("failed to insert chat message")
		return bson.NilObjectID, app_error.PersistenceFailure(fmt.Sprintf("failed to create message: %v", err))
	}
	return msg.ID, nil
}

func (r *ChatRepo) FindMessageByID(ctx context.Context, messageID bson.ObjectID) (*entity.Message, *app_error.AppError) {
	var message entity.Message
	if err := r.collection().FindOne(ctx, bson.M{"_id": messageID}).Decode(&message); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NewAppError(http.StatusNotFound, "message not found", "not-found")
		}
		return nil, app_error.PersistenceFailure(fmt.Sprintf("failed to fetch message: %v", err))
	}
	return &message, nil
}

// ListMessages returns up to limit messages of a project, oldest first. When
// before is set only messages strictly older than it are considered.
func (r *ChatRepo) ListMessages(ctx context.Context, projectID string, limit int, before *time.Time) ([]*entity.Message, *app_error.AppError) {
	filter := bson.M{"projectId": projectID}
	if before != nil {
		filter["timestamp"] = bson.M{"$lt": *before}
	}

	// newest first so the limit keeps the latest page
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, app_error.PersistenceFailure(fmt.Sprintf("failed to fetch messages: %v", err))
	}
	defer cur.Close(ctx)

	messages := make([]*entity.Message, 0, limit)
	if err := cur.All(ctx, &messages); err != nil {
		return nil, app_error.PersistenceFailure(fmt.Sprintf("failed to decode messages: %v", err))
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
