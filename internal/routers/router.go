package routers

import (
	"crypto/rsa"
	"net/http"

	"github.com/go-chi/chi/v5"
	chat_handler "github.com/xenn00/collab-hub/internal/handlers/chat-handler"
	hub_handler "github.com/xenn00/collab-hub/internal/handlers/hub-handler"
	task_handler "github.com/xenn00/collab-hub/internal/handlers/task-handler"
	"github.com/xenn00/collab-hub/internal/middleware"
)

type Handlers struct {
	PublicKey *rsa.PublicKey
	WebSocket http.Handler
	Hub       *hub_handler.HubHandler
	Chat      *chat_handler.ChatHandler
	Task      *task_handler.TaskHandler
}

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Method(http.MethodGet, "/ws", h.WebSocket)
	r.Route("/api/v1", func(api chi.Router) {
		HubRouter(api, h.PublicKey, h.Hub)
		ChatRouter(api, h.PublicKey, h.Chat, h.Task)
	})
	return r
}
