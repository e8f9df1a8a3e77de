package chat_handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/dtos/chat_dto"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/internal/handlers"
	chat_service "github.com/xenn00/collab-hub/internal/use-case/chat-case"
)

type ChatHandler struct {
	Service chat_service.ChatServiceContract
}

func NewChatHandler(service chat_service.ChatServiceContract) *ChatHandler {
	return &ChatHandler{
		Service: service,
	}
}

// GetMessages lists a project's chat history, oldest first.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID, appErr := handlers.UserID(r)
	if appErr != nil {
		return appErr
	}
	projectID := chi.URLParam(r, "projectId")

	req := chat_dto.GetMessagesRequest{
		ProjectID: projectID,
		Before:    r.URL.Query().Get("before"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return app_error.Invalid("limit must be a number")
		}
		req.Limit = limit
	}

	if appErr := h.Service.AuthorizeProject(r.Context(), projectID, userID); appErr != nil {
		return appErr
	}

	messages, appErr := h.Service.GetMessages(r.Context(), req)
	if appErr != nil {
		return appErr
	}

	handlers.Respond(w, r, http.StatusOK, "get chat messages", messages)
	return nil
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID, appErr := handlers.UserID(r)
	if appErr != nil {
		return appErr
	}

	var req chat_dto.SendMessageRequest
	if appErr := handlers.DecodeJSON(r, &req); appErr != nil {
		return appErr
	}
	req.ProjectID = chi.URLParam(r, "projectId")

	// SendMessage checks project membership itself
	resp, appErr := h.Service.SendMessage(r.Context(), req, userID)
	if appErr != nil {
		return appErr
	}

	log.Info().Str("projectID", req.ProjectID).Str("userID", userID).Str("messageID", resp.ID).Msg("chat message stored")
	handlers.Respond(w, r, http.StatusCreated, "message sent", resp)
	return nil
}
