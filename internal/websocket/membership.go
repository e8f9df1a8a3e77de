package websocket

import (
	"context"

	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	project_repo "github.com/xenn00/collab-hub/internal/repo/project"
)

// RoomAuthorizer decides whether an identity may join a room.
type RoomAuthorizer interface {
	AuthorizeJoin(ctx context.Context, id Identity, roomID string) *app_error.AppError
}

// ProjectRoomAuthorizer requires project membership for rooms that name a
// known project, either as the bare project id or as its task room. Other
// rooms are open.
type ProjectRoomAuthorizer struct {
	Projects project_repo.ProjectRepoContract
}

func NewProjectRoomAuthorizer(projects project_repo.ProjectRepoContract) *ProjectRoomAuthorizer {
	return &ProjectRoomAuthorizer{Projects: projects}
}

func (a *ProjectRoomAuthorizer) AuthorizeJoin(ctx context.Context, id Identity, roomID string) *app_error.AppError {
	projectID := project_repo.ProjectIDFromRoom(roomID)

	exists, appErr := a.Projects.ProjectExists(ctx, projectID)
	if appErr != nil {
		return appErr
	}
	if !exists {
		return nil
	}

	member, appErr := a.Projects.IsMember(ctx, projectID, id.UserID)
	if appErr != nil {
		return appErr
	}
	if !member {
		return app_error.NotAMember("not a member of this project")
	}
	return nil
}

type joinOp struct {
	client *Client
	roomID string
	ackID  string
}

func (op *joinOp) apply(h *Hub) { h.handleJoin(op.client, op.roomID, op.ackID) }

type leaveOp struct {
	client *Client
	roomID string
	ackID  string
}

func (op *leaveOp) apply(h *Hub) { h.handleLeave(op.client, op.roomID, op.ackID) }

type disconnectOp struct {
	client *Client
}

func (op *disconnectOp) apply(h *Hub) { h.handleDisconnect(op.client) }

func (h *Hub) registered(c *Client) bool {
	current, ok := h.clients[c.ID]
	return ok && current == c
}

func (h *Hub) handleJoin(c *Client, roomID, ackID string) {
	if !h.registered(c) {
		return
	}

	members, added := h.presence.Join(roomID, c.ID, c.Identity)
	if added {
		h.broadcast(roomID, EventActiveUsers, members, c)
		h.broadcast(roomID, EventUserJoined, c.userRef(), c)

		log.Info().Str("roomID", roomID).Str("connID", c.ID).Str("userID", c.Identity.UserID).Int("roomSize", len(members)).Msg("ws: joined room")
	}

	h.ack(c, roomID, ackID, "joined")
}

func (h *Hub) handleLeave(c *Client, roomID, ackID string) {
	if !h.registered(c) {
		return
	}

	members, removed := h.presence.Leave(roomID, c.ID)
	if removed {
		h.broadcast(roomID, EventActiveUsers, members, c)
		h.broadcast(roomID, EventUserLeft, c.userRef(), c)

		log.Info().Str("roomID", roomID).Str("connID", c.ID).Str("userID", c.Identity.UserID).Msg("ws: left room")
	}

	h.ack(c, roomID, ackID, "left")
}

// handleDisconnect runs at most once per connection. A second call finds the
// connection already gone from the table and does nothing.
func (h *Hub) handleDisconnect(c *Client) {
	if !h.registered(c) {
		return
	}
	delete(h.clients, c.ID)
	close(c.send)

	affected := h.presence.LeaveAll(c.ID)
	for _, room := range affected {
		h.broadcast(room.RoomID, EventActiveUsers, room.Members, c)
		h.broadcast(room.RoomID, EventUserLeft, c.userRef(), c)
	}

	log.Info().Str("connID", c.ID).Str("userID", c.Identity.UserID).Int("rooms", len(affected)).Msg("ws: client disconnected")
}
