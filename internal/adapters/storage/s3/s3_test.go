package s3_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	s3adapter "multipart-upload/internal/adapters/storage/s3"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var target = domain.ObjectTarget{Dir: "/files/", Name: "abcdef_video.mp4"}

func TestInitiate(t *testing.T) {
	// Arrange
	api := s3adapter.NewMockAPI()
	adapter := s3adapter.NewAdapterWithClient(api, "uploads", discardLogger)

	api.On("CreateMultipartUpload", mock.Anything, mock.MatchedBy(func(in *s3.CreateMultipartUploadInput) bool {
		return aws.ToString(in.Bucket) == "uploads" && aws.ToString(in.Key) == "files/abcdef_video.mp4"
	})).Return(&s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil).Once()

	// Act
	uploadID, err := adapter.Initiate(context.Background(), target)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "upload-1", uploadID)
	api.AssertExpectations(t)
}

func TestUploadPart(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		// Arrange
		api := s3adapter.NewMockAPI()
		adapter := s3adapter.NewAdapterWithClient(api, "uploads", discardLogger)

		api.On("UploadPart", mock.Anything, mock.MatchedBy(func(in *s3.UploadPartInput) bool {
			return aws.ToInt32(in.PartNumber) == 2 &&
				aws.ToString(in.UploadId) == "upload-1" &&
				aws.ToInt64(in.ContentLength) == 4
		})).Return(&s3.UploadPartOutput{ETag: aws.String("\"etag-2\"")}, nil).Once()

		// Act
		ack, err := adapter.UploadPart(context.Background(), target, "upload-1", 2, []byte("data"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, domain.PartAck{PartIndex: 2, Token: "etag-2"}, ack)
		api.AssertExpectations(t)
	})

	t.Run("error", func(t *testing.T) {
		// Arrange
		api := s3adapter.NewMockAPI()
		adapter := s3adapter.NewAdapterWithClient(api, "uploads", discardLogger)
		api.On("UploadPart", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

		// Act
		_, err := adapter.UploadPart(context.Background(), target, "upload-1", 1, []byte("data"))

		// Assert
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestComplete(t *testing.T) {
	t.Run("parts in order", func(t *testing.T) {
		// Arrange
		api := s3adapter.NewMockAPI()
		adapter := s3adapter.NewAdapterWithClient(api, "uploads", discardLogger)
		acks := []domain.PartAck{{PartIndex: 1, Token: "a"}, {PartIndex: 2, Token: "b"}}

		api.On("CompleteMultipartUpload", mock.Anything, mock.MatchedBy(func(in *s3.CompleteMultipartUploadInput) bool {
			parts := in.MultipartUpload.Parts
			return len(parts) == 2 &&
				aws.ToInt32(parts[0].PartNumber) == 1 && aws.ToString(parts[0].ETag) == "a" &&
				aws.ToInt32(parts[1].PartNumber) == 2 && aws.ToString(parts[1].ETag) == "b"
		})).Return(&s3.CompleteMultipartUploadOutput{Location: aws.String("https://uploads.s3/files/abcdef_video.mp4")}, nil).Once()

		// Act
		location, err := adapter.Complete(context.Background(), target, "upload-1", acks)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "https://uploads.s3/files/abcdef_video.mp4", location)
		api.AssertExpectations(t)
	})

	t.Run("no location returned", func(t *testing.T) {
		// Arrange
		api := s3adapter.NewMockAPI()
		adapter := s3adapter.NewAdapterWithClient(api, "uploads", discardLogger)
		api.On("CompleteMultipartUpload", mock.Anything, mock.Anything).Return(&s3.CompleteMultipartUploadOutput{}, nil).Once()

		// Act
		location, err := adapter.Complete(context.Background(), target, "upload-1", nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "s3://uploads/files/abcdef_video.mp4", location)
	})
}

func TestAbort(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "aborted", err: nil},
		{name: "already gone", err: &smithy.GenericAPIError{Code: "NoSuchUpload"}},
		{name: "denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			api := s3adapter.NewMockAPI()
			adapter := s3adapter.NewAdapterWithClient(api, "uploads", discardLogger)
			var out *s3.AbortMultipartUploadOutput
			if tt.err == nil {
				out = &s3.AbortMultipartUploadOutput{}
			}
			api.On("AbortMultipartUpload", mock.Anything, mock.Anything).Return(out, tt.err).Once()

			// Act
			err := adapter.Abort(context.Background(), target, "upload-1")

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestListStaleUploads(t *testing.T) {
	// Arrange
	api := s3adapter.NewMockAPI()
	adapter := s3adapter.NewAdapterWithClient(api, "uploads", discardLogger)
	now := time.Now()

	api.On("ListMultipartUploads", mock.Anything, mock.MatchedBy(func(in *s3.ListMultipartUploadsInput) bool {
		return in.KeyMarker == nil
	})).Return(&s3.ListMultipartUploadsOutput{
		Uploads: []types.MultipartUpload{
			{Key: aws.String("files/old"), UploadId: aws.String("u1"), Initiated: aws.Time(now.Add(-48 * time.Hour))},
			{Key: aws.String("files/new"), UploadId: aws.String("u2"), Initiated: aws.Time(now)},
		},
		IsTruncated:        aws.Bool(true),
		NextKeyMarker:      aws.String("files/new"),
		NextUploadIdMarker: aws.String("u2"),
	}, nil).Once()
	api.On("ListMultipartUploads", mock.Anything, mock.MatchedBy(func(in *s3.ListMultipartUploadsInput) bool {
		return aws.ToString(in.KeyMarker) == "files/new"
	})).Return(&s3.ListMultipartUploadsOutput{
		Uploads: []types.MultipartUpload{
			{Key: aws.String("files/older"), UploadId: aws.String("u3"), Initiated: aws.Time(now.Add(-72 * time.Hour))},
		},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	// Act
	uploads, err := adapter.ListStaleUploads(context.Background(), now.Add(-24*time.Hour))

	// Assert
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "u1", uploads[0].UploadID)
	assert.Equal(t, "files/older", uploads[1].Key)
	api.AssertExpectations(t)
}

func TestMaxParts(t *testing.T) {
	var backend port.UploadBackend = s3adapter.NewAdapterWithClient(s3adapter.NewMockAPI(), "uploads", discardLogger)

	limiter, ok := backend.(port.PartLimiter)

	require.True(t, ok)
	assert.Equal(t, 10000, limiter.MaxParts())
}
