package websocket

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultSendBuffer    = 256
	defaultOpBuffer      = 1024
	defaultPruneInterval = time.Minute
	defaultChatTimeout   = 10 * time.Second
)

// Hub owns the presence registry and the connection table. Both are touched
// only by the goroutine running Run; everything else submits ops to it.
type Hub struct {
	ops  chan hubOp
	done chan struct{}

	presence *Presence
	clients  map[string]*Client
	stats    HubStats

	sendBuffer    int
	pruneInterval time.Duration
	chatTimeout   time.Duration
	authorizer    RoomAuthorizer
	chat          MessagePersister
}

type HubConfig struct {
	SendBuffer       int
	PruneInterval    time.Duration
	ChatWriteTimeout time.Duration
	// Authorizer gates joinRoom. Nil admits every join.
	Authorizer RoomAuthorizer
	// Chat persists sendMessage payloads. Nil rejects every chat message.
	Chat MessagePersister
}

type HubStats struct {
	TotalRooms       int       `json:"total_rooms"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessageSent      int64     `json:"message_sent"`
	MessageDropped   int64     `json:"message_dropped"`
	StartedAt        time.Time `json:"started_at"`
}

type hubOp interface {
	apply(h *Hub)
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = defaultPruneInterval
	}
	if cfg.ChatWriteTimeout <= 0 {
		cfg.ChatWriteTimeout = defaultChatTimeout
	}

	return &Hub{
		ops:           make(chan hubOp, defaultOpBuffer),
		done:          make(chan struct{}),
		presence:      NewPresence(),
		clients:       make(map[string]*Client),
		stats:         HubStats{StartedAt: time.Now()},
		sendBuffer:    cfg.SendBuffer,
		pruneInterval: cfg.PruneInterval,
		chatTimeout:   cfg.ChatWriteTimeout,
		authorizer:    cfg.Authorizer,
		chat:          cfg.Chat,
	}
}

// Run applies ops until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pruneInterval)
	defer ticker.Stop()
	defer h.shutdown()

	log.Info().Msg("ws: hub started")

	for {
		select {
		case <-ctx.Done():
			return
		case op := <-h.ops:
			op.apply(h)
		case <-ticker.C:
			if pruned := h.presence.Prune(); pruned > 0 {
				log.Debug().Int("pruned", pruned).Msg("ws: pruned empty rooms")
			}
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	for id, c := range h.clients {
		close(c.send)
		c.closeTransport()
		delete(h.clients, id)
	}

	log.Info().Msg("ws: hub shutdown completed")
}

// Done is closed once the hub loop has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// submit hands op to the loop. It blocks while the op queue is full and
// reports false once the hub has stopped.
func (h *Hub) submit(op hubOp) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.ops <- op:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) submitCtx(ctx context.Context, op hubOp) error {
	select {
	case <-h.done:
		return errHubClosed
	default:
	}

	select {
	case h.ops <- op:
		return nil
	case <-h.done:
		return errHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

type queryOp struct {
	fn    func(h *Hub)
	reply chan struct{}
}

func (op *queryOp) apply(h *Hub) {
	op.fn(h)
	close(op.reply)
}

// query runs fn on the loop and waits for it to finish.
func (h *Hub) query(ctx context.Context, fn func(h *Hub)) error {
	op := &queryOp{fn: fn, reply: make(chan struct{})}
	if err := h.submitCtx(ctx, op); err != nil {
		return err
	}

	select {
	case <-op.reply:
		return nil
	case <-h.done:
		return errHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register adds a connection to the hub and waits until the loop has applied
// it. It must be called before the connection's pumps start. On false the hub
// has stopped without taking the connection and the caller must close it.
func (h *Hub) Register(c *Client) bool {
	return h.query(context.Background(), func(h *Hub) { h.addClient(c) }) == nil
}

func (h *Hub) unregister(c *Client) {
	h.submit(&disconnectOp{client: c})
}

func (h *Hub) addClient(c *Client) {
	h.clients[c.ID] = c
	h.stats.TotalConnections++

	log.Info().Str("connID", c.ID).Str("userID", c.Identity.UserID).Msg("ws: client registered")
}

func (h *Hub) Stats(ctx context.Context) (HubStats, error) {
	var stats HubStats
	err := h.query(ctx, func(h *Hub) {
		stats = h.stats
		stats.TotalRooms = h.presence.RoomCount()
		stats.TotalClients = len(h.clients)
	})
	return stats, err
}

// RoomPresence returns the members of roomID in join order.
func (h *Hub) RoomPresence(ctx context.Context, roomID string) ([]PresenceEntry, error) {
	var members []PresenceEntry
	err := h.query(ctx, func(h *Hub) {
		members = h.presence.Snapshot(roomID)
	})
	return members, err
}

func (h *Hub) isPresent(ctx context.Context, roomID, connID string) (bool, error) {
	var present bool
	err := h.query(ctx, func(h *Hub) {
		present = h.presence.IsPresent(roomID, connID)
	})
	return present, err
}
