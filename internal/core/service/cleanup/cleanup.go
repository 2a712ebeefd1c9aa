package cleanup

import (
	"log/slog"
	"multipart-upload/internal/core/port"
	"time"
)

type cleanupService struct {
	records    port.UploadRecordRepository
	uploads    port.StaleUploadStore
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewCleanupService creates a new cleanup service. uploads may be nil when the
// backend keeps no server side multipart state.
func NewCleanupService(records port.UploadRecordRepository, uploads port.StaleUploadStore, staleAfter time.Duration, logger *slog.Logger) port.CleanupService {
	return &cleanupService{
		records:    records,
		uploads:    uploads,
		staleAfter: staleAfter,
		logger:     logger,
	}
}
