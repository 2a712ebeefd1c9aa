package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/domain"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// API is the subset of the s3 client used by the adapter
type API interface {
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
	ListMultipartUploads(ctx context.Context, params *s3.ListMultipartUploadsInput, optFns ...func(*s3.Options)) (*s3.ListMultipartUploadsOutput, error)
}

// Adapter is an upload backend for AWS S3
type Adapter struct {
	client API
	bucket string
	logger *slog.Logger
}

// NewAdapter builds an s3 client from cfg. Static credentials are used when
// both keys are set, the default chain otherwise.
func NewAdapter(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*Adapter, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewAdapterWithClient(client, cfg.BucketName, logger), nil
}

// NewAdapterWithClient returns Adapter on top of an existing client
func NewAdapterWithClient(client API, bucket string, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, bucket: bucket, logger: logger}
}

func loadAWSConfig(ctx context.Context, cfg config.S3Config) (*aws.Config, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("region must not be empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &awsCfg, nil
}

func (a *Adapter) Name() string {
	return config.BackendS3
}

// MaxParts is the multipart part limit of the store
func (a *Adapter) MaxParts() int {
	return domain.MaxMultipartParts
}

// Initiate opens a multipart upload for the target key
func (a *Adapter) Initiate(ctx context.Context, target domain.ObjectTarget) (string, error) {
	out, err := a.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(target.Key()),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create multipart upload: %w", err)
	}
	if out.UploadId == nil {
		return "", fmt.Errorf("failed to create multipart upload: no upload id returned")
	}
	return *out.UploadId, nil
}

// UploadPart sends one chunk and returns its etag
func (a *Adapter) UploadPart(ctx context.Context, target domain.ObjectTarget, sessionID string, partIndex int, chunk []byte) (domain.PartAck, error) {
	out, err := a.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(target.Key()),
		UploadId:      aws.String(sessionID),
		PartNumber:    aws.Int32(int32(partIndex)),
		Body:          bytes.NewReader(chunk),
		ContentLength: aws.Int64(int64(len(chunk))),
	})
	if err != nil {
		return domain.PartAck{}, fmt.Errorf("failed to upload part %d: %w", partIndex, err)
	}

	return domain.PartAck{PartIndex: partIndex, Token: strings.Trim(aws.ToString(out.ETag), "\"")}, nil
}

// Complete assembles the acknowledged parts, acks must be ordered by part index
func (a *Adapter) Complete(ctx context.Context, target domain.ObjectTarget, sessionID string, acks []domain.PartAck) (string, error) {
	parts := make([]types.CompletedPart, 0, len(acks))
	for _, ack := range acks {
		parts = append(parts, types.CompletedPart{
			ETag:       aws.String(ack.Token),
			PartNumber: aws.Int32(int32(ack.PartIndex)),
		})
	}

	out, err := a.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(target.Key()),
		UploadId:        aws.String(sessionID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	if location := aws.ToString(out.Location); location != "" {
		return location, nil
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, target.Key()), nil
}

// Abort discards the parts stored so far. An upload the store no longer knows
// about counts as aborted.
func (a *Adapter) Abort(ctx context.Context, target domain.ObjectTarget, sessionID string) error {
	_, err := a.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(a.bucket),
		Key:      aws.String(target.Key()),
		UploadId: aws.String(sessionID),
	})
	if err != nil && !isNoSuchUpload(err) {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	a.logger.Info("multipart upload aborted", "key", target.Key(), "upload_id", sessionID)
	return nil
}

// ListStaleUploads lists multipart uploads opened before initiatedBefore
func (a *Adapter) ListStaleUploads(ctx context.Context, initiatedBefore time.Time) ([]domain.IncompleteUpload, error) {
	var (
		stale          []domain.IncompleteUpload
		keyMarker      *string
		uploadIDMarker *string
	)

	for {
		out, err := a.client.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{
			Bucket:         aws.String(a.bucket),
			KeyMarker:      keyMarker,
			UploadIdMarker: uploadIDMarker,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list multipart uploads: %w", err)
		}

		for _, upload := range out.Uploads {
			initiated := aws.ToTime(upload.Initiated)
			if !initiated.Before(initiatedBefore) {
				continue
			}
			stale = append(stale, domain.IncompleteUpload{
				Key:       aws.ToString(upload.Key),
				UploadID:  aws.ToString(upload.UploadId),
				Initiated: initiated,
			})
		}

		if !aws.ToBool(out.IsTruncated) {
			return stale, nil
		}
		keyMarker, uploadIDMarker = out.NextKeyMarker, out.NextUploadIdMarker
	}
}

// AbortStaleUpload aborts a multipart upload found by ListStaleUploads
func (a *Adapter) AbortStaleUpload(ctx context.Context, upload domain.IncompleteUpload) error {
	_, err := a.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(a.bucket),
		Key:      aws.String(upload.Key),
		UploadId: aws.String(upload.UploadID),
	})
	if err != nil && !isNoSuchUpload(err) {
		return fmt.Errorf("failed to abort stale upload %s: %w", upload.Key, err)
	}
	return nil
}

func isNoSuchUpload(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchUpload"
}
