package cleanup

import (
	"context"
	"errors"
	"fmt"
	"multipart-upload/internal/core/domain"
	"time"
)

// CleanupStaleUploads aborts multipart uploads opened more than staleAfter ago
// and fails journal records that made no progress for as long. A failure on
// one upload does not stop the others.
func (c *cleanupService) CleanupStaleUploads(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-c.staleAfter)

	return errors.Join(
		c.abortStaleUploads(ctx, cutoff),
		c.failStaleRecords(ctx, cutoff),
	)
}

func (c *cleanupService) abortStaleUploads(ctx context.Context, cutoff time.Time) error {
	if c.uploads == nil {
		return nil
	}

	uploads, err := c.uploads.ListStaleUploads(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale uploads: %w", err)
	}

	aborted := 0
	for _, upload := range uploads {
		if err := c.uploads.AbortStaleUpload(ctx, upload); err != nil {
			c.logger.Error("failed to abort stale upload", "key", upload.Key, "upload_id", upload.UploadID, "error", err)
			continue
		}
		aborted++
	}

	c.logger.Info("stale multipart uploads aborted", "found", len(uploads), "aborted", aborted)
	return nil
}

func (c *cleanupService) failStaleRecords(ctx context.Context, cutoff time.Time) error {
	records, err := c.records.FindStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to find stale upload records: %w", err)
	}

	for _, record := range records {
		msg := fmt.Sprintf("abandoned: no progress since %s", record.UpdatedAt.UTC().Format(time.RFC3339))
		if err := c.records.UpdateState(ctx, record.ID, domain.StateFailed, "", msg); err != nil {
			c.logger.Error("failed to mark stale upload record", "upload_id", record.ID, "error", err)
		}
	}

	if len(records) > 0 {
		c.logger.Info("stale upload records failed", "count", len(records))
	}
	return nil
}
