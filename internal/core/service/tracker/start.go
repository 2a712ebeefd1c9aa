package tracker

import (
	"context"
	"errors"
	"fmt"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

// Start journals a new upload of sourcePath and runs it in the background
func (t *trackerService) Start(ctx context.Context, sourcePath string, destination string) (uuid.UUID, error) {
	if destination == "" {
		destination = t.cfg.Destination
	}

	info, err := t.source.Stat(sourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, sourcePath)
		}
		return uuid.Nil, fmt.Errorf("failed to stat %s: %w", sourcePath, err)
	}
	if !info.Mode().IsRegular() {
		return uuid.Nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrSourceNotFound, sourcePath)
	}
	if info.Size() == 0 {
		return uuid.Nil, domain.ErrEmptyFile
	}

	file, err := t.source.Open(sourcePath)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to open %s: %w", sourcePath, err)
	}

	id := uuid.New()
	target := domain.NewObjectTarget(destination, sourcePath)
	record := domain.UploadRecord{
		ID:        id,
		FileName:  filepath.Base(sourcePath),
		ObjectKey: target.Key(),
		Backend:   t.backend,
		State:     domain.StateInit,
		SizeBytes: info.Size(),
	}
	if err := t.records.Create(ctx, record); err != nil {
		file.Close()
		return uuid.Nil, fmt.Errorf("failed to create upload record: %w", err)
	}

	t.wg.Add(1)
	go t.run(record, target, file)

	t.logger.Info("upload started", "upload_id", id, "source", sourcePath, "key", target.Key(), "size", info.Size())
	return id, nil
}

func (t *trackerService) run(record domain.UploadRecord, target domain.ObjectTarget, file billy.File) {
	defer t.wg.Done()
	defer file.Close()

	// callbacks run on the upload goroutine, no locking needed
	var (
		parts     int
		bytesSent int64
	)
	journalCtx := context.WithoutCancel(t.baseCtx)

	req := port.UploadRequest{
		ID:          record.ID,
		File:        domain.SourceFile{Name: record.FileName, Size: record.SizeBytes, Reader: file},
		Destination: target.Dir,
		Target:      &target,
		OnProgress: func(_ int, sent int64) {
			parts++
			bytesSent = sent
			if err := t.records.UpdateProgress(journalCtx, record.ID, sent, parts); err != nil {
				t.logger.Warn("failed to journal upload progress", "upload_id", record.ID, "error", err)
			}
		},
		OnComplete: func(location string) {
			t.finish(journalCtx, record, domain.StateComplete, location, "")
			t.publish(journalCtx, record, domain.UploadEvent{
				Type:      domain.EventTypeUploadCompleted,
				Location:  location,
				BytesSent: bytesSent,
			})
		},
		OnCancel: func() {
			t.finish(journalCtx, record, domain.StateCancelled, "", "")
			t.publish(journalCtx, record, domain.UploadEvent{
				Type:      domain.EventTypeUploadCancelled,
				BytesSent: bytesSent,
			})
		},
		OnFailure: func(partIndex int, err error) {
			t.finish(journalCtx, record, domain.StateFailed, "", err.Error())
			t.publish(journalCtx, record, domain.UploadEvent{
				Type:      domain.EventTypeUploadFailed,
				PartIndex: partIndex,
				BytesSent: bytesSent,
				Error:     err.Error(),
			})
		},
	}

	result, err := t.uploads.Upload(t.baseCtx, req)
	if result == nil && err != nil {
		// rejected before any callback could run
		t.finish(journalCtx, record, domain.StateFailed, "", err.Error())
	}
}

func (t *trackerService) finish(ctx context.Context, record domain.UploadRecord, state domain.UploadState, location, errMsg string) {
	if err := t.records.UpdateState(ctx, record.ID, state, location, errMsg); err != nil {
		t.logger.Error("failed to journal upload state", "upload_id", record.ID, "state", state, "error", err)
	}
}

func (t *trackerService) publish(ctx context.Context, record domain.UploadRecord, event domain.UploadEvent) {
	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	event.UploadID = record.ID
	event.ObjectKey = record.ObjectKey
	event.Backend = record.Backend
	event.OccurredAt = time.Now().UTC()

	if err := t.events.Publish(ctx, event); err != nil {
		t.logger.Error("failed to publish upload event", "upload_id", record.ID, "type", event.Type, "error", err)
	}
}
