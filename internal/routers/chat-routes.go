package routers

import (
	"crypto/rsa"

	"github.com/go-chi/chi/v5"
	"github.com/xenn00/collab-hub/internal/handlers"
	chat_handler "github.com/xenn00/collab-hub/internal/handlers/chat-handler"
	task_handler "github.com/xenn00/collab-hub/internal/handlers/task-handler"
	"github.com/xenn00/collab-hub/internal/middleware"
)

func ChatRouter(r chi.Router, publicKey *rsa.PublicKey, chatHandler *chat_handler.ChatHandler, taskHandler *task_handler.TaskHandler) {
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(publicKey))
		protected.Route("/projects/{projectId}", func(r chi.Router) {
			r.Get("/chat/messages", handlers.WrapHandler(chatHandler.GetMessages))
			r.Post("/chat/messages", handlers.WrapHandler(chatHandler.SendMessage))
			r.Post("/tasks/events", handlers.WrapHandler(taskHandler.PublishTaskEvent))
		})
	})
}
