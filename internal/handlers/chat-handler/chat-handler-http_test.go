package chat_handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/collab-hub/internal/dtos"
	"github.com/xenn00/collab-hub/internal/dtos/chat_dto"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/internal/handlers"
	"github.com/xenn00/collab-hub/internal/middleware"
)

type fakeService struct {
	member   bool
	lastGet  chat_dto.GetMessagesRequest
	lastSend chat_dto.SendMessageRequest
	sender   string
}

func (f *fakeService) SendMessage(_ context.Context, req chat_dto.SendMessageRequest, senderID string) (*chat_dto.MessageResponse, *app_error.AppError) {
	f.lastSend = req
	f.sender = senderID
	return &chat_dto.MessageResponse{ID: "m1", Content: req.Content, ProjectID: req.ProjectID}, nil
}

func (f *fakeService) GetMessages(_ context.Context, req chat_dto.GetMessagesRequest) ([]*chat_dto.MessageResponse, *app_error.AppError) {
	f.lastGet = req
	return []*chat_dto.MessageResponse{{ID: "m1"}, {ID: "m2"}}, nil
}

func (f *fakeService) AuthorizeProject(context.Context, string, string) *app_error.AppError {
	if !f.member {
		return app_error.NotAMember("Not authorized")
	}
	return nil
}

func newRouter(h *ChatHandler, userID string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != "" {
				r = r.WithContext(context.WithValue(r.Context(), middleware.UserClaimsKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/projects/{projectId}/chat/messages", handlers.WrapHandler(h.GetMessages))
	r.Post("/projects/{projectId}/chat/messages", handlers.WrapHandler(h.SendMessage))
	return r
}

func TestGetMessages(t *testing.T) {
	svc := &fakeService{member: true}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/projects/p1/chat/messages?limit=20&before=2024-01-02T15:04:05Z", nil)
	newRouter(NewChatHandler(svc), "u1").ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", svc.lastGet.ProjectID)
	assert.Equal(t, 20, svc.lastGet.Limit)
	assert.Equal(t, "2024-01-02T15:04:05Z", svc.lastGet.Before)

	var body dtos.Response[[]chat_dto.MessageResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	assert.NotEmpty(t, body.RequestID)
}

func TestGetMessages_BadLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/projects/p1/chat/messages?limit=ten", nil)
	newRouter(NewChatHandler(&fakeService{member: true}), "u1").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessages_NotAMember(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/projects/p1/chat/messages", nil)
	newRouter(NewChatHandler(&fakeService{}), "u1").ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var body dtos.Response[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Errors)
	assert.Equal(t, app_error.FieldMembership, body.Errors.Field)
}

func TestSendMessage(t *testing.T) {
	svc := &fakeService{member: true}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/p1/chat/messages",
		strings.NewReader(`{"projectId":"other","content":"hello","type":"text"}`))
	newRouter(NewChatHandler(svc), "u1").ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "p1", svc.lastSend.ProjectID, "path project wins over body")
	assert.Equal(t, "u1", svc.sender)

	var body dtos.Response[chat_dto.MessageResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "m1", body.Data.ID)
}

func TestSendMessage_Unauthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/p1/chat/messages", strings.NewReader(`{"content":"hi"}`))
	newRouter(NewChatHandler(&fakeService{member: true}), "").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
