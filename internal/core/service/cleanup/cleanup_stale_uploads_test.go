package cleanup_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"multipart-upload/internal/adapters/repository"
	"multipart-upload/internal/adapters/storage"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/service/cleanup"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const staleAfter = 24 * time.Hour

func TestCleanupService_CleanupStaleUploads_NothingStale(t *testing.T) {
	// Arrange
	ctx := context.Background()
	records := repository.NewMockUploadRecordRepository()
	uploads := storage.NewMockStaleUploadStore()
	service := cleanup.NewCleanupService(records, uploads, staleAfter, discardLogger)
	now := time.Now()

	uploads.On("ListStaleUploads", ctx, now.Add(-staleAfter)).Return([]domain.IncompleteUpload{}, nil)
	records.On("FindStale", ctx, now.Add(-staleAfter)).Return([]domain.UploadRecord{}, nil)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	uploads.AssertExpectations(t)
	records.AssertExpectations(t)
	uploads.AssertNotCalled(t, "AbortStaleUpload", mock.Anything, mock.Anything)
}

func TestCleanupService_CleanupStaleUploads_AbortsAndFails(t *testing.T) {
	// Arrange
	ctx := context.Background()
	records := repository.NewMockUploadRecordRepository()
	uploads := storage.NewMockStaleUploadStore()
	service := cleanup.NewCleanupService(records, uploads, staleAfter, discardLogger)
	now := time.Now()

	first := domain.IncompleteUpload{Key: "files/a", UploadID: "u1"}
	second := domain.IncompleteUpload{Key: "files/b", UploadID: "u2"}
	record := domain.UploadRecord{ID: uuid.New(), State: domain.StateTransferring, UpdatedAt: now.Add(-48 * time.Hour)}

	uploads.On("ListStaleUploads", ctx, now.Add(-staleAfter)).Return([]domain.IncompleteUpload{first, second}, nil)
	uploads.On("AbortStaleUpload", ctx, first).Return(errors.New("access denied")).Once()
	uploads.On("AbortStaleUpload", ctx, second).Return(nil).Once()
	records.On("FindStale", ctx, now.Add(-staleAfter)).Return([]domain.UploadRecord{record}, nil)
	records.On("UpdateState", ctx, record.ID, domain.StateFailed, "", mock.MatchedBy(func(msg string) bool {
		return len(msg) > 0
	})).Return(nil).Once()

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	uploads.AssertExpectations(t)
	records.AssertExpectations(t)
}

func TestCleanupService_CleanupStaleUploads_NoStore(t *testing.T) {
	// Arrange
	ctx := context.Background()
	records := repository.NewMockUploadRecordRepository()
	service := cleanup.NewCleanupService(records, nil, staleAfter, discardLogger)
	now := time.Now()

	records.On("FindStale", ctx, now.Add(-staleAfter)).Return([]domain.UploadRecord{}, nil)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	records.AssertExpectations(t)
}

func TestCleanupService_CleanupStaleUploads_ListErrors(t *testing.T) {
	// Arrange
	ctx := context.Background()
	records := repository.NewMockUploadRecordRepository()
	uploads := storage.NewMockStaleUploadStore()
	service := cleanup.NewCleanupService(records, uploads, staleAfter, discardLogger)
	now := time.Now()
	listErr := errors.New("store unavailable")
	dbErr := errors.New("db unavailable")

	uploads.On("ListStaleUploads", ctx, mock.Anything).Return([]domain.IncompleteUpload(nil), listErr)
	records.On("FindStale", ctx, mock.Anything).Return(nil, dbErr)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.ErrorIs(t, err, listErr)
	assert.ErrorIs(t, err, dbErr)
}
