package minio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/domain"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an upload backend for minio and other S3 compatible stores
type Adapter struct {
	client *minio.Client
	core   *minio.Core
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter, creating the bucket when missing
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	core := minio.Core{Client: client}
	return &Adapter{client: client, config: cfg, core: &core, logger: logger}, nil
}

func (a *Adapter) Name() string {
	return config.BackendMinio
}

// MaxParts is the multipart part limit of the store
func (a *Adapter) MaxParts() int {
	return domain.MaxMultipartParts
}

// Initiate opens a multipart upload for the target key
func (a *Adapter) Initiate(ctx context.Context, target domain.ObjectTarget) (string, error) {
	uploadID, err := a.core.NewMultipartUpload(ctx, a.config.BucketName, target.Key(), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("failed to init multipart upload: %w", err)
	}
	return uploadID, nil
}

// UploadPart sends one chunk and returns its etag
func (a *Adapter) UploadPart(ctx context.Context, target domain.ObjectTarget, sessionID string, partIndex int, chunk []byte) (domain.PartAck, error) {
	part, err := a.core.PutObjectPart(ctx, a.config.BucketName, target.Key(), sessionID, partIndex,
		bytes.NewReader(chunk), int64(len(chunk)), minio.PutObjectPartOptions{})
	if err != nil {
		return domain.PartAck{}, fmt.Errorf("failed to put part %d: %w", partIndex, err)
	}

	return domain.PartAck{PartIndex: partIndex, Token: strings.Trim(part.ETag, "\"")}, nil
}

// Complete assembles the acknowledged parts, acks must be ordered by part index
func (a *Adapter) Complete(ctx context.Context, target domain.ObjectTarget, sessionID string, acks []domain.PartAck) (string, error) {
	completeParts := make([]minio.CompletePart, 0, len(acks))
	for _, ack := range acks {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: ack.PartIndex,
			ETag:       ack.Token,
		})
	}

	info, err := a.core.CompleteMultipartUpload(ctx, a.config.BucketName, target.Key(), sessionID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	if info.Location != "" {
		return info.Location, nil
	}
	return a.client.EndpointURL().JoinPath(a.config.BucketName, target.Key()).String(), nil
}

// Abort discards the parts stored so far
func (a *Adapter) Abort(ctx context.Context, target domain.ObjectTarget, sessionID string) error {
	err := a.core.AbortMultipartUpload(ctx, a.config.BucketName, target.Key(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	a.logger.Info("multipart upload aborted",
		slog.String("key", target.Key()),
		slog.String("upload_id", sessionID))

	return nil
}

// ListStaleUploads lists multipart uploads opened before initiatedBefore
func (a *Adapter) ListStaleUploads(ctx context.Context, initiatedBefore time.Time) ([]domain.IncompleteUpload, error) {
	var stale []domain.IncompleteUpload
	for info := range a.client.ListIncompleteUploads(ctx, a.config.BucketName, "", true) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list incomplete uploads: %w", info.Err)
		}
		if info.Initiated.Before(initiatedBefore) {
			stale = append(stale, domain.IncompleteUpload{
				Key:       info.Key,
				UploadID:  info.UploadID,
				Initiated: info.Initiated,
			})
		}
	}
	return stale, nil
}

// AbortStaleUpload aborts a multipart upload found by ListStaleUploads
func (a *Adapter) AbortStaleUpload(ctx context.Context, upload domain.IncompleteUpload) error {
	if err := a.core.AbortMultipartUpload(ctx, a.config.BucketName, upload.Key, upload.UploadID); err != nil {
		return fmt.Errorf("failed to abort stale upload %s: %w", upload.Key, err)
	}
	return nil
}
