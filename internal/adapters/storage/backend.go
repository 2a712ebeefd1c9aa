package storage

import (
	"context"
	"fmt"
	"log/slog"
	"multipart-upload/internal/adapters/storage/local"
	"multipart-upload/internal/adapters/storage/minio"
	"multipart-upload/internal/adapters/storage/s3"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/port"
)

// NewBackend builds the upload backend selected by cfg.Upload.Backend. The
// stale upload store is nil for the local backend.
func NewBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.UploadBackend, port.StaleUploadStore, error) {
	switch cfg.Upload.Backend {
	case config.BackendLocal:
		return local.NewAdapter(cfg.Local, logger), nil, nil
	case config.BackendMinio:
		adapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
		if err != nil {
			return nil, nil, err
		}
		return adapter, adapter, nil
	case config.BackendS3:
		adapter, err := s3.NewAdapter(ctx, cfg.S3, logger)
		if err != nil {
			return nil, nil, err
		}
		return adapter, adapter, nil
	default:
		return nil, nil, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}
}
