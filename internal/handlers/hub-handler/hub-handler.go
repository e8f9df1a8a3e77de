package hub_handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/internal/handlers"
	"github.com/xenn00/collab-hub/internal/websocket"
)

// HubReader is the read side of the hub used for introspection.
type HubReader interface {
	Stats(ctx context.Context) (websocket.HubStats, error)
	RoomPresence(ctx context.Context, roomID string) ([]websocket.PresenceEntry, error)
}

type DLQStats interface {
	Stats(ctx context.Context) (map[string]int64, error)
}

// ConnectionCounter reports the handshakes currently holding a connection slot.
type ConnectionCounter interface {
	ActiveConnections() int
}

// HubHandler serves hub introspection. Rooms, when set, gates presence reads
// with the same rule that gates joins. DLQ and Connections are optional.
type HubHandler struct {
	Hub         HubReader
	DLQ         DLQStats
	Rooms       websocket.RoomAuthorizer
	Connections ConnectionCounter
}

func NewHubHandler(hub HubReader, dlq DLQStats, rooms websocket.RoomAuthorizer, conns ConnectionCounter) *HubHandler {
	return &HubHandler{
		Hub:         hub,
		DLQ:         dlq,
		Rooms:       rooms,
		Connections: conns,
	}
}

type StatsResponse struct {
	Hub               websocket.HubStats `json:"hub"`
	ActiveConnections int                `json:"active_connections"`
	DLQ               map[string]int64   `json:"dlq,omitempty"`
}

type RoomPresenceResponse struct {
	RoomID      string                    `json:"room_id"`
	Count       int                       `json:"count"`
	UniqueUsers int                       `json:"unique_users"`
	Members     []websocket.PresenceEntry `json:"members"`
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if _, err := h.Hub.Stats(r.Context()); err != nil {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	handlers.WriteJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"service":   "collab-hub",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats, err := h.Hub.Stats(r.Context())
	if err != nil {
		return app_error.NewAppError(http.StatusServiceUnavailable, "hub is not running", "hub")
	}

	resp := StatsResponse{Hub: stats}
	if h.Connections != nil {
		resp.ActiveConnections = h.Connections.ActiveConnections()
	}
	if h.DLQ != nil {
		dlq, err := h.DLQ.Stats(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("failed to read dlq stats")
		} else {
			resp.DLQ = dlq
		}
	}

	handlers.Respond(w, r, http.StatusOK, "get websocket stats", resp)
	return nil
}

func (h *HubHandler) HandleGetRoomPresence(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID, appErr := handlers.UserID(r)
	if appErr != nil {
		return appErr
	}
	roomID := chi.URLParam(r, "roomId")

	if h.Rooms != nil {
		if appErr := h.Rooms.AuthorizeJoin(r.Context(), websocket.Identity{UserID: userID}, roomID); appErr != nil {
			return appErr
		}
	}

	members, err := h.Hub.RoomPresence(r.Context(), roomID)
	if err != nil {
		return app_error.NewAppError(http.StatusServiceUnavailable, "hub is not running", "hub")
	}

	users := make(map[string]struct{}, len(members))
	for _, m := range members {
		users[m.UserID] = struct{}{}
	}

	handlers.Respond(w, r, http.StatusOK, "get room presence", RoomPresenceResponse{
		RoomID:      roomID,
		Count:       len(members),
		UniqueUsers: len(users),
		Members:     members,
	})
	return nil
}
