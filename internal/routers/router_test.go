package routers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/collab-hub/internal/dtos/chat_dto"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	chat_handler "github.com/xenn00/collab-hub/internal/handlers/chat-handler"
	hub_handler "github.com/xenn00/collab-hub/internal/handlers/hub-handler"
	task_handler "github.com/xenn00/collab-hub/internal/handlers/task-handler"
	"github.com/xenn00/collab-hub/internal/queue"
	"github.com/xenn00/collab-hub/internal/utils"
	"github.com/xenn00/collab-hub/internal/websocket"
)

type memberService struct{}

func (memberService) SendMessage(_ context.Context, req chat_dto.SendMessageRequest, _ string) (*chat_dto.MessageResponse, *app_error.AppError) {
	return &chat_dto.MessageResponse{ID: "m1", ProjectID: req.ProjectID, Content: req.Content}, nil
}

func (memberService) GetMessages(context.Context, chat_dto.GetMessagesRequest) ([]*chat_dto.MessageResponse, *app_error.AppError) {
	return []*chat_dto.MessageResponse{}, nil
}

func (memberService) AuthorizeProject(context.Context, string, string) *app_error.AppError {
	return nil
}

// projects knows p1, whose only member is u1.
type projects struct{}

func (projects) ProjectExists(_ context.Context, projectID string) (bool, *app_error.AppError) {
	return projectID == "p1", nil
}

func (projects) IsMember(_ context.Context, projectID, userID string) (bool, *app_error.AppError) {
	return projectID == "p1" && userID == "u1", nil
}

type rejectAll struct{}

func (rejectAll) Resolve(*http.Request) (websocket.Identity, *app_error.AppError) {
	return websocket.Identity{}, app_error.Unauthenticated("Missing token")
}

func setupRouter(t *testing.T) (http.Handler, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(websocket.HubConfig{})
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := memberService{}
	wsHandler := websocket.NewWebSocketHandler(ctx, hub, rejectAll{}, websocket.HandlerConfig{})
	router := NewRouter(Handlers{
		PublicKey: &key.PublicKey,
		WebSocket: wsHandler,
		Hub:       hub_handler.NewHubHandler(hub, nil, websocket.NewProjectRoomAuthorizer(projects{}), wsHandler),
		Chat:      chat_handler.NewChatHandler(svc),
		Task:      task_handler.NewTaskHandler(queue.NewProducer(rdb), svc, 3),
	})
	return router, key
}

func bearer(t *testing.T, key *rsa.PrivateKey, userID string) string {
	t.Helper()
	token, err := utils.IssueAccessToken(userID, userID, time.Minute, key)
	require.NoError(t, err)
	return "Bearer " + token
}

func get(router http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthIsPublic(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_HubIntrospection(t *testing.T) {
	router, key := setupRouter(t)

	tests := []struct {
		name string
		path string
		user string
		code int
	}{
		{"stats without token", "/api/v1/stats", "", http.StatusUnauthorized},
		{"presence without token", "/api/v1/rooms/board/presence", "", http.StatusUnauthorized},
		{"stats", "/api/v1/stats", "u2", http.StatusOK},
		{"open room", "/api/v1/rooms/board/presence", "u2", http.StatusOK},
		{"project room, not a member", "/api/v1/rooms/p1/presence", "u2", http.StatusForbidden},
		{"task room, not a member", "/api/v1/rooms/project-p1/presence", "u2", http.StatusForbidden},
		{"project room, member", "/api/v1/rooms/p1/presence", "u1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := ""
			if tt.user != "" {
				auth = bearer(t, key, tt.user)
			}
			assert.Equal(t, tt.code, get(router, tt.path, auth).Code)
		})
	}
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	router, key := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects/p1/chat/messages", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := utils.IssueAccessToken("u1", "Ada", time.Minute, key)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p1/chat/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/tasks/events", strings.NewReader(`{"event":"taskDeleted","taskId":"t1"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRouter_WebSocketRequiresIdentity(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
