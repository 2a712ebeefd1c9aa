package storage

import (
	"context"
	"multipart-upload/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of port.UploadBackend
type MockBackend struct {
	mock.Mock
}

func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) Name() string {
	return "mock"
}

func (m *MockBackend) Initiate(ctx context.Context, target domain.ObjectTarget) (string, error) {
	args := m.Called(ctx, target)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) UploadPart(ctx context.Context, target domain.ObjectTarget, sessionID string, partIndex int, chunk []byte) (domain.PartAck, error) {
	// the chunk buffer is reused between parts, record a copy
	args := m.Called(ctx, target, sessionID, partIndex, append([]byte(nil), chunk...))
	return args.Get(0).(domain.PartAck), args.Error(1)
}

func (m *MockBackend) Complete(ctx context.Context, target domain.ObjectTarget, sessionID string, acks []domain.PartAck) (string, error) {
	args := m.Called(ctx, target, sessionID, append([]domain.PartAck(nil), acks...))
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Abort(ctx context.Context, target domain.ObjectTarget, sessionID string) error {
	args := m.Called(ctx, target, sessionID)
	return args.Error(0)
}

// MockStaleUploadStore is a mock implementation of port.StaleUploadStore
type MockStaleUploadStore struct {
	mock.Mock
}

func NewMockStaleUploadStore() *MockStaleUploadStore {
	return &MockStaleUploadStore{}
}

func (m *MockStaleUploadStore) ListStaleUploads(ctx context.Context, initiatedBefore time.Time) ([]domain.IncompleteUpload, error) {
	args := m.Called(ctx, initiatedBefore)
	return args.Get(0).([]domain.IncompleteUpload), args.Error(1)
}

func (m *MockStaleUploadStore) AbortStaleUpload(ctx context.Context, upload domain.IncompleteUpload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

// MockAppendStore is a mock implementation of port.AppendStore
type MockAppendStore struct {
	mock.Mock
}

func NewMockAppendStore() *MockAppendStore {
	return &MockAppendStore{}
}

func (m *MockAppendStore) AppendPart(ctx context.Context, fileName string, partIndex int, data []byte) error {
	args := m.Called(ctx, fileName, partIndex, data)
	return args.Error(0)
}

func (m *MockAppendStore) Delete(ctx context.Context, fileName string) error {
	args := m.Called(ctx, fileName)
	return args.Error(0)
}
