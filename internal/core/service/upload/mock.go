package upload

import (
	"context"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	mock.Mock
}

// NewMockUploadService creates a new MockUploadService
func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) Upload(ctx context.Context, req port.UploadRequest) (*domain.UploadResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*domain.UploadResult), args.Error(1)
}

func (m *MockUploadService) RequestCancel(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}
