package websocket

import (
	"bytes"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IncomingMessage is one client frame.
type IncomingMessage struct {
	Event EventKind           `json:"event"`
	Data  jsoniter.RawMessage `json:"data,omitempty"`
	AckID string              `json:"ackId,omitempty"`
}

// OutgoingMessage is one server frame.
type OutgoingMessage struct {
	Event     EventKind `json:"event"`
	RoomID    string    `json:"roomId,omitempty"`
	Data      any       `json:"data,omitempty"`
	AckID     string    `json:"ackId,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

func newOutgoing(event EventKind, roomID string, data any) OutgoingMessage {
	return OutgoingMessage{
		Event:     event,
		RoomID:    roomID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

type roomRef struct {
	RoomID string `json:"roomId"`
}

// parseRoomID accepts either a bare JSON string or an object carrying roomId.
func parseRoomID(data jsoniter.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", errMissingRoom
	}

	if trimmed[0] == '"' {
		var roomID string
		if err := json.Unmarshal(trimmed, &roomID); err != nil {
			return "", err
		}
		if roomID == "" {
			return "", errMissingRoom
		}
		return roomID, nil
	}

	var ref roomRef
	if err := json.Unmarshal(trimmed, &ref); err != nil {
		return "", err
	}
	if ref.RoomID == "" {
		return "", errMissingRoom
	}
	return ref.RoomID, nil
}

type UserRef struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type AckPayload struct {
	Status string `json:"status"`
	RoomID string `json:"roomId,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ChatPayload struct {
	RoomID      string              `json:"roomId"`
	ProjectID   string              `json:"projectId"`
	Content     string              `json:"content"`
	Type        string              `json:"type"`
	Attachments []AttachmentPayload `json:"attachments"`
}

type AttachmentPayload struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Type     string `json:"type"`
}

type TaskPayload struct {
	ProjectID string              `json:"projectId"`
	Task      jsoniter.RawMessage `json:"task,omitempty"`
	TaskID    string              `json:"taskId,omitempty"`
}
