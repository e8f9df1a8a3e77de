package chat_service

import (
	"context"

	"github.com/xenn00/collab-hub/internal/dtos/chat_dto"
	app_error "github.com/xenn00/collab-hub/internal/errors"
)

type ChatServiceContract interface {
	SendMessage(ctx context.Context, req chat_dto.SendMessageRequest, senderID string) (*chat_dto.MessageResponse, *app_error.AppError)
	GetMessages(ctx context.Context, req chat_dto.GetMessagesRequest) ([]*chat_dto.MessageResponse, *app_error.AppError)
	AuthorizeProject(ctx context.Context, projectID, userID string) *app_error.AppError
}
