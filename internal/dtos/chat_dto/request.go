package chat_dto

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xenn00/collab-hub/internal/entity"
)

const (
	MaxContentLength = 5000
	DefaultLimit     = 100
	MaxLimit         = 500
)

type AttachmentRequest struct {
	Filename string `json:"filename" validate:"required"`
	URL      string `json:"url" validate:"required"`
	Type     string `json:"type"`
}

type SendMessageRequest struct {
	ProjectID   string              `json:"projectId" validate:"required"`
	Content     string              `json:"content" validate:"required,max=5000"`
	Type        string              `json:"type" validate:"omitempty,messagetype"`
	Attachments []AttachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

// Normalize trims the content and applies the default message type.
func (r *SendMessageRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		r.Type = entity.MessageTypeText
	}
}

type GetMessagesRequest struct {
	ProjectID string `validate:"required"`
	Limit     int    `validate:"omitempty,min=1,max=500"`
	Before    string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func MessageTypeValidator(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case entity.MessageTypeText, entity.MessageTypeFile, entity.MessageTypeImage, entity.MessageTypeSystem:
		return true
	}
	return false
}

// NewValidator returns a validator with the chat rules registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("messagetype", MessageTypeValidator)
	return validate
}
