package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/domain"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher publishes upload outcome events on a JetStream stream
type Publisher struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
}

// NewNATSPublisher connects to NATS and makes sure the events stream exists
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.Subject + ".>"},
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.StreamName, err)
	}

	return &Publisher{
		logger: logger,
		conn:   conn,
		js:     js,
		config: cfg,
	}, nil
}

// Subject is the subject an event of type t is published on,
// e.g. upload.events.completed
func Subject(base string, t domain.EventType) string {
	return base + "." + strings.TrimPrefix(string(t), "upload.")
}

// Publish sends event as JSON. The upload id and type make the message id so
// a repeated publish is deduplicated by the stream.
func (p *Publisher) Publish(ctx context.Context, event domain.UploadEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := Subject(p.config.Subject, event.Type)
	_, err = p.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.UploadID.String()+"-"+string(event.Type)))
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.Debug("upload event published", "subject", subject, "upload_id", event.UploadID)
	return nil
}

// Close drains pending messages and closes the connection
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
