package routers

import (
	"crypto/rsa"

	"github.com/go-chi/chi/v5"
	"github.com/xenn00/collab-hub/internal/handlers"
	hub_handler "github.com/xenn00/collab-hub/internal/handlers/hub-handler"
	"github.com/xenn00/collab-hub/internal/middleware"
)

func HubRouter(r chi.Router, publicKey *rsa.PublicKey, hubHandler *hub_handler.HubHandler) {
	r.Get("/health", hubHandler.HandleHealth)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(publicKey))
		protected.Get("/stats", handlers.WrapHandler(hubHandler.HandleGetStats))
		protected.Get("/rooms/{roomId}/presence", handlers.WrapHandler(hubHandler.HandleGetRoomPresence))
	})
}
