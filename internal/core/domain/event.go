package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType is a type that represents the outcome carried by an upload event
type EventType string

const (
	EventTypeUploadCompleted EventType = "upload.completed"
	EventTypeUploadCancelled EventType = "upload.cancelled"
	EventTypeUploadFailed    EventType = "upload.failed"
)

// UploadEvent is published once per upload when it reaches a terminal state
type UploadEvent struct {
	Type       EventType `json:"type"`
	UploadID   uuid.UUID `json:"upload_id"`
	ObjectKey  string    `json:"object_key"`
	Backend    string    `json:"backend"`
	Location   string    `json:"location,omitempty"`
	PartIndex  int       `json:"part_index,omitempty"`
	BytesSent  int64     `json:"bytes_sent"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
