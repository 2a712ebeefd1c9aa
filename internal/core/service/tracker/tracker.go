package tracker

import (
	"context"
	"log/slog"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/port"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
)

const eventTimeout = 5 * time.Second

type trackerService struct {
	uploads port.UploadService
	records port.UploadRecordRepository
	events  port.EventPublisher
	source  billy.Filesystem
	backend string
	cfg     config.UploadConfig
	logger  *slog.Logger

	// uploads started by the tracker outlive the request that started them
	baseCtx context.Context
	wg      sync.WaitGroup
}

// NewTrackerService creates a tracker reading source files from source.
// Uploads run under baseCtx; cancelling it cancels them at their next part boundary.
func NewTrackerService(
	baseCtx context.Context,
	uploads port.UploadService,
	records port.UploadRecordRepository,
	events port.EventPublisher,
	source billy.Filesystem,
	backend string,
	cfg config.UploadConfig,
	logger *slog.Logger,
) port.TrackerService {
	return &trackerService{
		uploads: uploads,
		records: records,
		events:  events,
		source:  source,
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Wait blocks until every started upload reached a terminal state
func (t *trackerService) Wait() {
	t.wg.Wait()
}
