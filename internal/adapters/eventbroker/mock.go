package eventbroker

import (
	"context"
	"multipart-upload/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of port.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.UploadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
