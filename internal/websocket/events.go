package websocket

import "errors"

type EventKind string

const (
	EventJoinRoom  EventKind = "joinRoom"
	EventLeaveRoom EventKind = "leaveRoom"

	EventDrawing       EventKind = "drawing"
	EventAddShape      EventKind = "addShape"
	EventAddText       EventKind = "addText"
	EventAddStickyNote EventKind = "addStickyNote"
	EventUpdateObject  EventKind = "updateObject"
	EventDeleteObject  EventKind = "deleteObject"
	EventClearCanvas   EventKind = "clearCanvas"

	EventSendMessage    EventKind = "sendMessage"
	EventReceiveMessage EventKind = "receiveMessage"
	EventMessageError   EventKind = "messageError"
	EventTyping         EventKind = "typing"
	EventStopTyping     EventKind = "stopTyping"

	EventTaskCreated EventKind = "taskCreated"
	EventTaskUpdated EventKind = "taskUpdated"
	EventTaskDeleted EventKind = "taskDeleted"

	EventActiveUsers EventKind = "activeUsers"
	EventUserJoined  EventKind = "userJoined"
	EventUserLeft    EventKind = "userLeft"

	EventAck   EventKind = "ack"
	EventError EventKind = "error"
)

type Audience int

const (
	// AudienceRoom delivers to the current members of the target room.
	AudienceRoom Audience = iota
	// AudienceSender delivers to the originating connection only.
	AudienceSender
)

// Policy decides who receives an event kind.
type Policy struct {
	Audience      Audience
	IncludeSender bool
}

var policies = map[EventKind]Policy{
	EventDrawing:       {Audience: AudienceRoom},
	EventAddShape:      {Audience: AudienceRoom},
	EventAddText:       {Audience: AudienceRoom},
	EventAddStickyNote: {Audience: AudienceRoom},
	EventUpdateObject:  {Audience: AudienceRoom},
	EventDeleteObject:  {Audience: AudienceRoom},
	EventClearCanvas:   {Audience: AudienceRoom},

	EventTyping:     {Audience: AudienceRoom},
	EventStopTyping: {Audience: AudienceRoom},

	EventActiveUsers: {Audience: AudienceRoom, IncludeSender: true},
	EventUserJoined:  {Audience: AudienceRoom},
	EventUserLeft:    {Audience: AudienceRoom},

	EventTaskCreated: {Audience: AudienceRoom, IncludeSender: true},
	EventTaskUpdated: {Audience: AudienceRoom, IncludeSender: true},
	EventTaskDeleted: {Audience: AudienceRoom, IncludeSender: true},

	EventReceiveMessage: {Audience: AudienceRoom, IncludeSender: true},

	EventMessageError: {Audience: AudienceSender},
	EventError:        {Audience: AudienceSender},
	EventAck:          {Audience: AudienceSender},
}

// PolicyFor returns the delivery policy of an event kind.
func PolicyFor(kind EventKind) (Policy, bool) {
	p, ok := policies[kind]
	return p, ok
}

func isWhiteboardEvent(kind EventKind) bool {
	switch kind {
	case EventDrawing, EventAddShape, EventAddText, EventAddStickyNote,
		EventUpdateObject, EventDeleteObject, EventClearCanvas:
		return true
	}
	return false
}

func isTaskEvent(kind EventKind) bool {
	switch kind {
	case EventTaskCreated, EventTaskUpdated, EventTaskDeleted:
		return true
	}
	return false
}

var (
	errMissingRoom    = errors.New("roomId is required")
	errMissingProject = errors.New("projectId is required")
	errHubClosed      = errors.New("hub is not running")
)
