package websocket

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	project_repo "github.com/xenn00/collab-hub/internal/repo/project"
)

// relayOp fans an event out to a room. A nil sender marks a server-originated
// event, which skips the membership check.
type relayOp struct {
	sender *Client
	kind   EventKind
	roomID string
	data   any
	ackID  string
}

func (op *relayOp) apply(h *Hub) { h.relay(op) }

type directOp struct {
	client *Client
	msg    OutgoingMessage
}

func (op *directOp) apply(h *Hub) {
	if !h.registered(op.client) {
		return
	}
	h.send(op.client, op.msg)
}

func (h *Hub) relay(op *relayOp) {
	if op.sender != nil {
		if !h.registered(op.sender) {
			return
		}
		if !h.presence.IsPresent(op.roomID, op.sender.ID) {
			h.send(op.sender, errorMessage(EventError, op.ackID, app_error.NotAMember(fmt.Sprintf("join room %s before sending %s", op.roomID, op.kind))))
			return
		}
	}

	h.broadcast(op.roomID, op.kind, op.data, op.sender)

	if op.sender != nil {
		h.ack(op.sender, op.roomID, op.ackID, "delivered")
	}
}

// broadcast encodes one frame and enqueues it for every target the policy of
// kind selects. Targets are visited in join order.
func (h *Hub) broadcast(roomID string, kind EventKind, data any, sender *Client) {
	policy, ok := PolicyFor(kind)
	if !ok {
		log.Warn().Str("event", string(kind)).Msg("ws: no delivery policy, dropping event")
		return
	}

	payload, err := json.Marshal(newOutgoing(kind, roomID, data))
	if err != nil {
		log.Error().Err(err).Str("roomID", roomID).Str("event", string(kind)).Msg("ws: failed to marshal broadcast message")
		return
	}

	if policy.Audience == AudienceSender {
		if sender != nil {
			h.deliver(sender, payload)
		}
		return
	}

	targets := 0
	for _, entry := range h.presence.Snapshot(roomID) {
		if sender != nil && !policy.IncludeSender && entry.SocketID == sender.ID {
			continue
		}
		c, ok := h.clients[entry.SocketID]
		if !ok {
			continue
		}
		if h.deliver(c, payload) {
			targets++
		}
	}

	log.Debug().Str("roomID", roomID).Str("event", string(kind)).Int("targets", targets).Msg("ws: broadcast completed")
}

func (h *Hub) send(c *Client, msg OutgoingMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("connID", c.ID).Str("event", string(msg.Event)).Msg("ws: failed to marshal message")
		return
	}
	h.deliver(c, payload)
}

// deliver never blocks the loop. A connection whose queue is full is closed
// and cleaned up through its normal disconnect path.
func (h *Hub) deliver(c *Client, payload []byte) bool {
	select {
	case c.send <- payload:
		h.stats.MessageSent++
		return true
	default:
		h.stats.MessageDropped++
		log.Warn().Str("connID", c.ID).Str("userID", c.Identity.UserID).Msg("ws: slow consumer, closing connection")
		c.closeTransport()
		return false
	}
}

func (h *Hub) ack(c *Client, roomID, ackID, status string) {
	if ackID == "" {
		return
	}
	msg := newOutgoing(EventAck, roomID, AckPayload{Status: status, RoomID: roomID})
	msg.AckID = ackID
	h.send(c, msg)
}

func errorMessage(kind EventKind, ackID string, appErr *app_error.AppError) OutgoingMessage {
	msg := newOutgoing(kind, "", ErrorPayload{Message: appErr.Message, Field: appErr.Field})
	msg.AckID = ackID
	return msg
}

// PublishTaskEvent delivers a server-originated task notice to every member
// of the project's task room.
func (h *Hub) PublishTaskEvent(ctx context.Context, kind EventKind, projectID string, data any) error {
	if !isTaskEvent(kind) {
		return fmt.Errorf("ws: %q is not a task event", kind)
	}
	if projectID == "" {
		return errMissingProject
	}
	return h.submitCtx(ctx, &relayOp{
		kind:   kind,
		roomID: project_repo.ProjectRoom(projectID),
		data:   data,
	})
}
