package websocket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/collab-hub/internal/errors"
)

type HandlerConfig struct {
	AllowedOrigins   []string
	MaxConnections   int
	ConnectionsPerIP int
}

// WebSocketHandler authenticates the handshake, enforces the connection
// limits and hands upgraded connections to the hub.
type WebSocketHandler struct {
	ctx      context.Context
	hub      *Hub
	auth     Authenticator
	upgrader websocket.Upgrader
	limiter  *connectionLimiter
	origins  []string
}

func NewWebSocketHandler(ctx context.Context, hub *Hub, auth Authenticator, cfg HandlerConfig) *WebSocketHandler {
	h := &WebSocketHandler{
		ctx:     ctx,
		hub:     hub,
		auth:    auth,
		limiter: newConnectionLimiter(cfg.MaxConnections, cfg.ConnectionsPerIP),
		origins: cfg.AllowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	if appErr := h.limiter.acquire(clientIP); appErr != nil {
		log.Warn().Str("ip", clientIP).Str("reason", appErr.Message).Msg("ws: connection refused")
		writeAppError(w, appErr)
		return
	}

	identity, appErr := h.auth.Resolve(r)
	if appErr != nil {
		h.limiter.release(clientIP)
		log.Info().Str("ip", clientIP).Str("reason", appErr.Message).Msg("ws: handshake rejected")
		writeAppError(w, appErr)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		h.limiter.release(clientIP)
		log.Error().Err(err).Str("ip", clientIP).Msg("ws: upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, identity, clientIP)
	client.onClose = func() { h.limiter.release(clientIP) }

	if !h.hub.Register(client) {
		h.limiter.release(clientIP)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	client.Start(h.ctx)
}

// ActiveConnections reports the connections currently counted against the
// global limit.
func (h *WebSocketHandler) ActiveConnections() int {
	return h.limiter.total()
}

func writeAppError(w http.ResponseWriter, appErr *app_error.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	_ = appErr.JSON(w)
}
