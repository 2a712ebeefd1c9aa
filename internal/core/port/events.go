package port

import (
	"context"
	"multipart-upload/internal/core/domain"
)

// EventPublisher is an interface to define an upload event publisher (nats, ...)
type EventPublisher interface {
	Publish(ctx context.Context, event domain.UploadEvent) error
	Close() error
}
