package chat_service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/dtos/chat_dto"
	"github.com/xenn00/collab-hub/internal/entity"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	chat_repo "github.com/xenn00/collab-hub/internal/repo/chat"
	project_repo "github.com/xenn00/collab-hub/internal/repo/project"
	user_repo "github.com/xenn00/collab-hub/internal/repo/user"
)

type ChatService struct {
	ChatRepo    chat_repo.ChatRepoContract
	UserRepo    user_repo.UserRepoContract
	ProjectRepo project_repo.ProjectRepoContract
	Validate    *validator.Validate
}

func NewChatService(chatRepo chat_repo.ChatRepoContract, userRepo user_repo.UserRepoContract, projectRepo project_repo.ProjectRepoContract) *ChatService {
	return &ChatService{
		ChatRepo:    chatRepo,
		UserRepo:    userRepo,
		ProjectRepo: projectRepo,
		Validate:    chat_dto.NewValidator(),
	}
}

// SendMessage validates and stores one message from a member of its project,
// then reads the stored record back and joins the author's display fields.
// Nothing is returned unless the write and the read-back both succeed.
func (c *ChatService) SendMessage(ctx context.Context, req chat_dto.SendMessageRequest, senderID string) (*chat_dto.MessageResponse, *app_error.AppError) {
	req.Normalize()
	if err := c.Validate.Struct(req); err != nil {
		return nil, app_error.Invalid(fmt.Sprintf("Invalid fields: %v", err))
	}

	if appErr := c.AuthorizeProject(ctx, req.ProjectID, senderID); appErr != nil {
		return nil, appErr
	}

	attachments := make([]entity.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, entity.Attachment{Filename: a.Filename, URL: a.URL, Type: a.Type})
	}

	msg := &entity.Message{
		ProjectID:   req.ProjectID,
		UserID:      senderID,
		Content:     req.Content,
		Type:        req.Type,
		Attachments: attachments,
		Timestamp:   time.Now().UTC(),
	}

	msgID, appErr := c.ChatRepo.CreateMessage(ctx, msg)
	if appErr != nil {
		return nil, appErr
	}

	stored, appErr := c.ChatRepo.FindMessageByID(ctx, msgID)
	if appErr != nil {
		log.Error().Str("messageID", msgID.Hex()).Str("error", appErr.Message).Msg("failed to read back chat message")
		return nil, app_error.PersistenceFailure("failed to read back message")
	}

	author, appErr := c.UserRepo.FindProfileByID(ctx, senderID)
	if appErr != nil {
		return nil, app_error.PersistenceFailure("failed to load message author")
	}

	return chat_dto.NewMessageResponse(stored, author), nil
}

func (c *ChatService) GetMessages(ctx context.Context, req chat_dto.GetMessagesRequest) ([]*chat_dto.MessageResponse, *app_error.AppError) {
	if err := c.Validate.Struct(req); err != nil {
		return nil, app_error.Invalid(fmt.Sprintf("Invalid fields: %v", err))
	}

	limit := req.Limit
	if limit == 0 {
		limit = chat_dto.DefaultLimit
	}

	var before *time.Time
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, app_error.Invalid("before must be an RFC3339 timestamp")
		}
		before = &t
	}

	messages, appErr := c.ChatRepo.ListMessages(ctx, req.ProjectID, limit, before)
	if appErr != nil {
		return nil, appErr
	}

	authorIDs := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		if _, ok := seen[m.UserID]; ok {
			continue
		}
		seen[m.UserID] = struct{}{}
		authorIDs = append(authorIDs, m.UserID)
	}

	authors, appErr := c.UserRepo.FindProfilesByIDs(ctx, authorIDs)
	if appErr != nil {
		return nil, appErr
	}

	resp := make([]*chat_dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, chat_dto.NewMessageResponse(m, authors[m.UserID]))
	}
	return resp, nil
}

// AuthorizeProject reports 404 for an unknown project and 403 for a user who
// is not one of its members.
func (c *ChatService) AuthorizeProject(ctx context.Context, projectID, userID string) *app_error.AppError {
	exists, appErr := c.ProjectRepo.ProjectExists(ctx, projectID)
	if appErr != nil {
		return appErr
	}
	if !exists {
		return app_error.NewAppError(http.StatusNotFound, "Project not found", "not-found")
	}

	member, appErr := c.ProjectRepo.IsMember(ctx, projectID, userID)
	if appErr != nil {
		return appErr
	}
	if !member {
		return app_error.NotAMember("Not authorized")
	}
	return nil
}
