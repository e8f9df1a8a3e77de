package websocket

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	project_repo "github.com/xenn00/collab-hub/internal/repo/project"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MB
)

// Client is one authenticated connection. Its frames are handled one at a
// time by readPump; only the hub loop writes to send.
type Client struct {
	ID       string
	Identity Identity
	IP       string

	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	onClose   func()
	closeOnce sync.Once
	closed    atomic.Bool
}

func NewClient(hub *Hub, conn *websocket.Conn, id Identity, ip string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Identity: id,
		IP:       ip,
		conn:     conn,
		send:     make(chan []byte, hub.sendBuffer),
		hub:      hub,
	}
}

// Start runs the pumps. ctx bounds the suspending work done for this
// connection's frames; it is not tied to the transport.
func (c *Client) Start(ctx context.Context) {
	go c.writePump()
	go c.readPump(ctx)
}

func (c *Client) userRef() UserRef {
	return UserRef{UserID: c.Identity.UserID, UserName: c.Identity.Name}
}

func (c *Client) closeTransport() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) isClosed() bool {
	return c.closed.Load()
}

// writePump drains send in order and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeTransport()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles inbound frames sequentially. The disconnect is submitted
// only after the loop exits, so it always follows this connection's last
// frame.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.closeTransport()
		if c.onClose != nil {
			c.onClose()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("connID", c.ID).Msg("ws: unexpected close")
			}
			return
		}
		c.handleFrame(ctx, raw)
	}
}

func (c *Client) handleFrame(ctx context.Context, raw []byte) {
	var msg IncomingMessage

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("connID", c.ID).Str("event", string(msg.Event)).Msgf("ws: panic while handling frame: %v", r)
			c.reject(EventError, msg.AckID, app_error.NewAppError(http.StatusInternalServerError, "internal error", "internal"))
		}
	}()

	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reject(EventError, "", app_error.ProtocolMisuse("malformed frame"))
		return
	}

	switch {
	case msg.Event == EventJoinRoom:
		c.joinRoom(ctx, msg)
	case msg.Event == EventLeaveRoom:
		c.leaveRoom(msg)
	case isWhiteboardEvent(msg.Event):
		c.relayWhiteboard(msg)
	case msg.Event == EventTyping || msg.Event == EventStopTyping:
		c.relayTyping(msg)
	case msg.Event == EventSendMessage:
		c.sendMessage(ctx, msg)
	case isTaskEvent(msg.Event):
		c.relayTask(msg)
	default:
		c.reject(EventError, msg.AckID, app_error.ProtocolMisuse(fmt.Sprintf("unknown event %q", msg.Event)))
	}
}

// reject reports a failure to this connection only.
func (c *Client) reject(kind EventKind, ackID string, appErr *app_error.AppError) {
	c.hub.submit(&directOp{client: c, msg: errorMessage(kind, ackID, appErr)})
}

func (c *Client) joinRoom(ctx context.Context, msg IncomingMessage) {
	roomID, err := parseRoomID(msg.Data)
	if err != nil {
		c.reject(EventError, msg.AckID, app_error.ProtocolMisuse(err.Error()))
		return
	}

	if c.hub.authorizer != nil {
		authCtx, cancel := context.WithTimeout(ctx, c.hub.chatTimeout)
		appErr := c.hub.authorizer.AuthorizeJoin(authCtx, c.Identity, roomID)
		cancel()
		if appErr != nil {
			log.Info().Str("roomID", roomID).Str("userID", c.Identity.UserID).Str("reason", appErr.Message).Msg("ws: join refused")
			c.reject(EventError, msg.AckID, appErr)
			return
		}
	}

	c.hub.submit(&joinOp{client: c, roomID: roomID, ackID: msg.AckID})
}

func (c *Client) leaveRoom(msg IncomingMessage) {
	roomID, err := parseRoomID(msg.Data)
	if err != nil {
		c.reject(EventError, msg.AckID, app_error.ProtocolMisuse(err.Error()))
		return
	}
	c.hub.submit(&leaveOp{client: c, roomID: roomID, ackID: msg.AckID})
}

// relayWhiteboard forwards the payload verbatim to the other members.
func (c *Client) relayWhiteboard(msg IncomingMessage) {
	roomID, err := parseRoomID(msg.Data)
	if err != nil {
		c.reject(EventError, msg.AckID, app_error.ProtocolMisuse(err.Error()))
		return
	}
	c.hub.submit(&relayOp{sender: c, kind: msg.Event, roomID: roomID, data: msg.Data, ackID: msg.AckID})
}

func (c *Client) relayTyping(msg IncomingMessage) {
	roomID, err := parseRoomID(msg.Data)
	if err != nil {
		c.reject(EventError, msg.AckID, app_error.ProtocolMisuse(err.Error()))
		return
	}
	c.hub.submit(&relayOp{sender: c, kind: msg.Event, roomID: roomID, data: c.userRef(), ackID: msg.AckID})
}

func (c *Client) relayTask(msg IncomingMessage) {
	var payload TaskPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.reject(EventError, msg.AckID, app_error.ProtocolMisuse("malformed task payload"))
		return
	}
	if payload.ProjectID == "" {
		c.reject(EventError, msg.AckID, app_error.ProtocolMisuse(errMissingProject.Error()))
		return
	}

	var data any
	if msg.Event == EventTaskDeleted {
		if payload.TaskID == "" {
			c.reject(EventError, msg.AckID, app_error.ProtocolMisuse("taskId is required"))
			return
		}
		data = payload.TaskID
	} else {
		if len(payload.Task) == 0 {
			c.reject(EventError, msg.AckID, app_error.ProtocolMisuse("task is required"))
			return
		}
		data = payload.Task
	}

	c.hub.submit(&relayOp{
		sender: c,
		kind:   msg.Event,
		roomID: project_repo.ProjectRoom(payload.ProjectID),
		data:   data,
		ackID:  msg.AckID,
	})
}
