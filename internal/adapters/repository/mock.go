package repository

import (
	"context"
	"multipart-upload/internal/core/domain"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUploadRecordRepository struct {
	mock.Mock
}

func NewMockUploadRecordRepository() *MockUploadRecordRepository {
	return &MockUploadRecordRepository{}
}

func (m *MockUploadRecordRepository) Create(ctx context.Context, record domain.UploadRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockUploadRecordRepository) UpdateProgress(ctx context.Context, id uuid.UUID, bytesSent int64, parts int) error {
	args := m.Called(ctx, id, bytesSent, parts)
	return args.Error(0)
}

func (m *MockUploadRecordRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.UploadState, location string, errMsg string) error {
	args := m.Called(ctx, id, state, location, errMsg)
	return args.Error(0)
}

func (m *MockUploadRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadRecord), args.Error(1)
}

func (m *MockUploadRecordRepository) FindStale(ctx context.Context, updatedBefore time.Time) ([]domain.UploadRecord, error) {
	args := m.Called(ctx, updatedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UploadRecord), args.Error(1)
}
