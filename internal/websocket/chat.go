package websocket

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/dtos/chat_dto"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	project_repo "github.com/xenn00/collab-hub/internal/repo/project"
)

// MessagePersister stores a chat message and returns the canonical record
// joined with its author.
type MessagePersister interface {
	SendMessage(ctx context.Context, req chat_dto.SendMessageRequest, senderID string) (*chat_dto.MessageResponse, *app_error.AppError)
}

// sendMessage persists the message before anyone sees it. Every failure is
// reported as messageError to the sender alone and nothing is broadcast.
func (c *Client) sendMessage(ctx context.Context, msg IncomingMessage) {
	var payload ChatPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.reject(EventMessageError, msg.AckID, app_error.ProtocolMisuse("malformed message payload"))
		return
	}

	roomID := payload.RoomID
	if roomID == "" {
		roomID = payload.ProjectID
	}
	if roomID == "" {
		c.reject(EventMessageError, msg.AckID, app_error.ProtocolMisuse(errMissingRoom.Error()))
		return
	}

	// a room carries the chat of the project it names and no other
	projectID := project_repo.ProjectIDFromRoom(roomID)
	if payload.ProjectID != "" && payload.ProjectID != projectID {
		c.reject(EventMessageError, msg.AckID, app_error.ProtocolMisuse(fmt.Sprintf("room %s does not belong to project %s", roomID, payload.ProjectID)))
		return
	}

	present, err := c.hub.isPresent(ctx, roomID, c.ID)
	if err != nil {
		return
	}
	if !present {
		c.reject(EventMessageError, msg.AckID, app_error.NotAMember("join the room before sending messages"))
		return
	}

	if c.hub.chat == nil {
		c.reject(EventMessageError, msg.AckID, app_error.PersistenceFailure("Failed to send message"))
		return
	}

	req := chat_dto.SendMessageRequest{
		ProjectID: projectID,
		Content:   payload.Content,
		Type:      payload.Type,
	}
	for _, a := range payload.Attachments {
		req.Attachments = append(req.Attachments, chat_dto.AttachmentRequest{Filename: a.Filename, URL: a.URL, Type: a.Type})
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.hub.chatTimeout)
	defer cancel()

	stored, appErr := c.hub.chat.SendMessage(writeCtx, req, c.Identity.UserID)
	if appErr != nil {
		log.Error().Str("roomID", roomID).Str("connID", c.ID).Str("userID", c.Identity.UserID).Str("reason", appErr.Message).Msg("ws: failed to send message")
		c.reject(EventMessageError, msg.AckID, appErr)
		return
	}

	c.hub.submit(&relayOp{sender: c, kind: EventReceiveMessage, roomID: roomID, data: stored, ackID: msg.AckID})
}
