package tracker

import (
	"context"
	"multipart-upload/internal/core/domain"

	"github.com/google/uuid"
)

// Get returns the journaled state of an upload
func (t *trackerService) Get(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	return t.records.FindByID(ctx, id)
}

// Cancel requests cancellation of an active upload, it stops at its next part boundary
func (t *trackerService) Cancel(_ context.Context, id uuid.UUID) error {
	return t.uploads.RequestCancel(id)
}
