package port

import (
	"context"
	"multipart-upload/internal/core/domain"
	"time"
)

// UploadBackend is the capability an upload session drives, one call at a time
type UploadBackend interface {
	// Name identifies the backend in logs and records
	Name() string
	// Initiate opens an upload and returns the backend session handle
	Initiate(ctx context.Context, target domain.ObjectTarget) (string, error)
	// UploadPart sends exactly one chunk. chunk is only valid for the duration
	// of the call, its buffer is reused for the next part.
	UploadPart(ctx context.Context, target domain.ObjectTarget, sessionID string, partIndex int, chunk []byte) (domain.PartAck, error)
	// Complete assembles the acknowledged parts and returns the final location
	Complete(ctx context.Context, target domain.ObjectTarget, sessionID string, acks []domain.PartAck) (string, error)
	// Abort discards whatever was written so far
	Abort(ctx context.Context, target domain.ObjectTarget, sessionID string) error
}

// PartLimiter is implemented by backends that cap the number of parts of one upload
type PartLimiter interface {
	MaxParts() int
}

// StaleUploadStore is implemented by object-store backends able to list the
// multipart uploads they still hold open
type StaleUploadStore interface {
	ListStaleUploads(ctx context.Context, initiatedBefore time.Time) ([]domain.IncompleteUpload, error)
	AbortStaleUpload(ctx context.Context, upload domain.IncompleteUpload) error
}

// AppendStore is the server side of the local append protocol
type AppendStore interface {
	AppendPart(ctx context.Context, fileName string, partIndex int, data []byte) error
	Delete(ctx context.Context, fileName string) error
}
