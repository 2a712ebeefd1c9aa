package eventbroker

import (
	"context"
	"log/slog"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
)

type noopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher returns a publisher that only logs events, used when NATS is not configured
func NewNoopPublisher(logger *slog.Logger) port.EventPublisher {
	return &noopPublisher{logger: logger}
}

func (p *noopPublisher) Publish(_ context.Context, event domain.UploadEvent) error {
	p.logger.Debug("upload event dropped, no broker configured", "type", event.Type, "upload_id", event.UploadID)
	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
