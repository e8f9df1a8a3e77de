package chat_service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/collab-hub/internal/dtos/chat_dto"
	"github.com/xenn00/collab-hub/internal/entity"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeChatRepo struct {
	messages  map[bson.ObjectID]*entity.Message
	order     []*entity.Message
	createErr *app_error.AppError
	findErr   *app_error.AppError
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{messages: make(map[bson.ObjectID]*entity.Message)}
}

func (f *fakeChatRepo) CreateMessage(_ context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError) {
	if f.createErr != nil {
		return bson.NilObjectID, f.createErr
	}
	msg.ID = bson.NewObjectID()
	stored := *msg
	f.messages[msg.ID] = &stored
	f.order = append(f.order, &stored)
	return msg.ID, nil
}

func (f *fakeChatRepo) FindMessageByID(_ context.Context, id bson.ObjectID) (*entity.Message, *app_error.AppError) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	m, ok := f.messages[id]
	if !ok {
		return nil, app_error.NewAppError(http.StatusNotFound, "message not found", "not-found")
	}
	return m, nil
}

func (f *fakeChatRepo) ListMessages(_ context.Context, projectID string, limit int, before *time.Time) ([]*entity.Message, *app_error.AppError) {
	var out []*entity.Message
	for _, m := range f.order {
		if m.ProjectID != projectID {
			continue
		}
		if before != nil && !m.Timestamp.Before(*before) {
			continue
		}
		out = append(out, m)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeUserRepo struct {
	profiles map[string]*entity.UserProfile
}

func (f *fakeUserRepo) FindProfileByID(_ context.Context, id string) (*entity.UserProfile, *app_error.AppError) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, app_error.NewAppError(http.StatusNotFound, "user not found", "not-found")
	}
	return p, nil
}

func (f *fakeUserRepo) FindProfilesByIDs(_ context.Context, ids []string) (map[string]*entity.UserProfile, *app_error.AppError) {
	out := make(map[string]*entity.UserProfile)
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeProjectRepo struct {
	members map[string][]string
}

func (f *fakeProjectRepo) ProjectExists(_ context.Context, projectID string) (bool, *app_error.AppError) {
	_, ok := f.members[projectID]
	return ok, nil
}

func (f *fakeProjectRepo) IsMember(_ context.Context, projectID, userID string) (bool, *app_error.AppError) {
	for _, m := range f.members[projectID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func newTestService() (*ChatService, *fakeChatRepo) {
	chatRepo := newFakeChatRepo()
	users := &fakeUserRepo{profiles: map[string]*entity.UserProfile{
		"u-ada": {ID: "u-ada", Name: "Ada", Email: "ada@example.com", Avatar: "ada.png"},
	}}
	projects := &fakeProjectRepo{members: map[string][]string{"p1": {"u-ada"}}}
	return NewChatService(chatRepo, users, projects), chatRepo
}

func TestChatService_SendMessage(t *testing.T) {
	svc, repo := newTestService()

	resp, appErr := svc.SendMessage(context.Background(), chat_dto.SendMessageRequest{
		ProjectID: "p1",
		Content:   "  hello team ",
	}, "u-ada")
	require.Nil(t, appErr)

	assert.Equal(t, "hello team", resp.Content)
	assert.Equal(t, "text", resp.Type)
	assert.Equal(t, "p1", resp.ProjectID)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Empty(t, resp.Attachments)
	assert.Len(t, repo.order, 1)
	assert.Equal(t, repo.order[0].ID.Hex(), resp.ID)
}

func TestChatService_SendMessage_InvalidPayloadStoresNothing(t *testing.T) {
	svc, repo := newTestService()

	_, appErr := svc.SendMessage(context.Background(), chat_dto.SendMessageRequest{ProjectID: "p1", Type: "video", Content: "x"}, "u-ada")
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.FieldValidation, appErr.Field)
	assert.Empty(t, repo.order)
}

func TestChatService_SendMessage_RequiresMembership(t *testing.T) {
	svc, repo := newTestService()

	tests := []struct {
		name      string
		projectID string
		code      int
	}{
		{"not a member", "p1", http.StatusForbidden},
		{"unknown project", "p404", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, appErr := svc.SendMessage(context.Background(), chat_dto.SendMessageRequest{ProjectID: tt.projectID, Content: "hi"}, "u-eve")
			assert.Nil(t, resp)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
	assert.Empty(t, repo.order)
}

func TestChatService_SendMessage_WriteFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.createErr = app_error.PersistenceFailure("mongo down")

	resp, appErr := svc.SendMessage(context.Background(), chat_dto.SendMessageRequest{ProjectID: "p1", Content: "hi"}, "u-ada")
	assert.Nil(t, resp)
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.FieldPersistence, appErr.Field)
}

func TestChatService_SendMessage_ReadBackFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.findErr = app_error.PersistenceFailure("timeout")

	resp, appErr := svc.SendMessage(context.Background(), chat_dto.SendMessageRequest{ProjectID: "p1", Content: "hi"}, "u-ada")
	assert.Nil(t, resp)
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.FieldPersistence, appErr.Field)
}

func TestChatService_GetMessages(t *testing.T) {
	svc, repo := newTestService()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, content := range []string{"one", "two", "three"} {
		repo.CreateMessage(context.Background(), &entity.Message{
			ProjectID: "p1",
			UserID:    "u-ada",
			Content:   content,
			Type:      "text",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	repo.CreateMessage(context.Background(), &entity.Message{ProjectID: "p2", UserID: "u-ada", Content: "other", Timestamp: base})

	all, appErr := svc.GetMessages(context.Background(), chat_dto.GetMessagesRequest{ProjectID: "p1"})
	require.Nil(t, appErr)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Content)
	assert.Equal(t, "Ada", all[0].User.Name)

	page, appErr := svc.GetMessages(context.Background(), chat_dto.GetMessagesRequest{
		ProjectID: "p1",
		Limit:     1,
		Before:    base.Add(2 * time.Minute).Format(time.RFC3339),
	})
	require.Nil(t, appErr)
	require.Len(t, page, 1)
	assert.Equal(t, "two", page[0].Content)

	_, appErr = svc.GetMessages(context.Background(), chat_dto.GetMessagesRequest{ProjectID: "p1", Before: "yesterday"})
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestChatService_AuthorizeProject(t *testing.T) {
	svc, _ := newTestService()

	assert.Nil(t, svc.AuthorizeProject(context.Background(), "p1", "u-ada"))

	appErr := svc.AuthorizeProject(context.Background(), "p1", "u-eve")
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Code)

	appErr = svc.AuthorizeProject(context.Background(), "p9", "u-ada")
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}
