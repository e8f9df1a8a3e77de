package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
)

type Message struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	ProjectID   string        `bson:"projectId"`
	UserID      string        `bson:"user"`
	Content     string        `bson:"content"`
	Type        string        `bson:"type"`
	Attachments []Attachment  `bson:"attachments"`
	Timestamp   time.Time     `bson:"timestamp"`
}

type Attachment struct {
	Filename string `bson:"filename" json:"filename"`
	URL      string `bson:"url" json:"url"`
	Type     string `bson:"type" json:"type"`
}
