package port

import (
	"context"
	"multipart-upload/internal/core/domain"

	"github.com/google/uuid"
)

// UploadRequest describes one upload and the callbacks that observe it.
// All callbacks are optional and run on the goroutine driving the upload.
type UploadRequest struct {
	// ID is generated when left empty
	ID          uuid.UUID
	File        domain.SourceFile
	Destination string
	// Target overrides the name derived from Destination and File.Name
	Target *domain.ObjectTarget

	OnProgress func(percent int, bytesSent int64)
	OnComplete func(location string)
	OnCancel   func()
	OnFailure  func(partIndex int, err error)
}

// UploadService drives sequential chunked uploads
type UploadService interface {
	Upload(ctx context.Context, req UploadRequest) (*domain.UploadResult, error)
	RequestCancel(id uuid.UUID) error
}

// TrackerService runs uploads in the background and journals their progress
type TrackerService interface {
	Start(ctx context.Context, sourcePath string, destination string) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Wait()
}
