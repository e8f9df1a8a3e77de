package chat_dto

import (
	"time"

	"github.com/xenn00/collab-hub/internal/entity"
)

type MessageResponse struct {
	ID          string              `json:"id"`
	Content     string              `json:"content"`
	ProjectID   string              `json:"projectId"`
	User        *entity.UserProfile `json:"user"`
	Type        string              `json:"type"`
	Attachments []entity.Attachment `json:"attachments"`
	Timestamp   time.Time           `json:"timestamp"`
}

// NewMessageResponse joins a stored message with its author's display fields.
// A missing author yields a profile carrying only the user id.
func NewMessageResponse(msg *entity.Message, author *entity.UserProfile) *MessageResponse {
	if author == nil {
		author = &entity.UserProfile{ID: msg.UserID}
	}
	attachments := msg.Attachments
	if attachments == nil {
		attachments = []entity.Attachment{}
	}
	return &MessageResponse{
		ID:          msg.ID.Hex(),
		Content:     msg.Content,
		ProjectID:   msg.ProjectID,
		User:        author,
		Type:        msg.Type,
		Attachments: attachments,
		Timestamp:   msg.Timestamp,
	}
}
