package tracker

import (
	"context"
	"multipart-upload/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTrackerService is a mock implementation of TrackerService
type MockTrackerService struct {
	mock.Mock
}

// NewMockTrackerService creates a new MockTrackerService
func NewMockTrackerService() *MockTrackerService {
	return &MockTrackerService{}
}

func (m *MockTrackerService) Start(ctx context.Context, sourcePath string, destination string) (uuid.UUID, error) {
	args := m.Called(ctx, sourcePath, destination)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTrackerService) Get(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadRecord), args.Error(1)
}

func (m *MockTrackerService) Cancel(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTrackerService) Wait() {
	m.Called()
}
