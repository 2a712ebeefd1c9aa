package port

import (
	"context"
	"multipart-upload/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// UploadRecordRepository is an interface to interact with the upload journal
type UploadRecordRepository interface {
	Create(ctx context.Context, record domain.UploadRecord) error
	UpdateProgress(ctx context.Context, id uuid.UUID, bytesSent int64, parts int) error
	UpdateState(ctx context.Context, id uuid.UUID, state domain.UploadState, location string, errMsg string) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error)
	FindStale(ctx context.Context, updatedBefore time.Time) ([]domain.UploadRecord, error)
}
