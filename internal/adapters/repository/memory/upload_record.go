package memory

import (
	"context"
	"fmt"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type uploadRecordRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]domain.UploadRecord
	now     func() time.Time
}

// NewUploadRecordRepository returns a journal kept in process memory
func NewUploadRecordRepository() port.UploadRecordRepository {
	return newUploadRecordRepository(time.Now)
}

func newUploadRecordRepository(now func() time.Time) *uploadRecordRepository {
	return &uploadRecordRepository{
		records: make(map[uuid.UUID]domain.UploadRecord),
		now:     now,
	}
}

func (r *uploadRecordRepository) Create(_ context.Context, record domain.UploadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.ID]; ok {
		return fmt.Errorf("upload record %s already exists", record.ID)
	}
	now := r.now()
	record.CreatedAt, record.UpdatedAt = now, now
	r.records[record.ID] = record
	return nil
}

func (r *uploadRecordRepository) UpdateProgress(_ context.Context, id uuid.UUID, bytesSent int64, parts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok || record.State.Terminal() {
		return domain.ErrRecordNotFound
	}
	record.BytesSent = bytesSent
	record.Parts = parts
	record.State = domain.StateTransferring
	record.UpdatedAt = r.now()
	r.records[id] = record
	return nil
}

func (r *uploadRecordRepository) UpdateState(_ context.Context, id uuid.UUID, state domain.UploadState, location string, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	record.State = state
	record.Location = location
	record.Error = errMsg
	record.UpdatedAt = r.now()
	r.records[id] = record
	return nil
}

func (r *uploadRecordRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &record, nil
}

func (r *uploadRecordRepository) FindStale(_ context.Context, updatedBefore time.Time) ([]domain.UploadRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []domain.UploadRecord
	for _, record := range r.records {
		if !record.State.Terminal() && record.UpdatedAt.Before(updatedBefore) {
			stale = append(stale, record)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].UpdatedAt.Before(stale[j].UpdatedAt) })
	return stale, nil
}
