package storage_test

import (
	"context"
	"io"
	"log/slog"
	"multipart-upload/internal/adapters/storage"
	"multipart-upload/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewBackend(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		cfg := &config.Config{
			Upload: config.UploadConfig{Backend: config.BackendLocal},
			Local:  config.LocalConfig{BaseURL: "http://localhost:8080"},
		}

		backend, stale, err := storage.NewBackend(context.Background(), cfg, discardLogger)

		require.NoError(t, err)
		assert.Equal(t, config.BackendLocal, backend.Name())
		assert.Nil(t, stale)
	})

	t.Run("s3", func(t *testing.T) {
		cfg := &config.Config{
			Upload: config.UploadConfig{Backend: config.BackendS3},
			S3: config.S3Config{
				Region:          "ap-northeast-2",
				BucketName:      "uploads",
				AccessKeyID:     "key",
				SecretAccessKey: "secret",
			},
		}

		backend, stale, err := storage.NewBackend(context.Background(), cfg, discardLogger)

		require.NoError(t, err)
		assert.Equal(t, config.BackendS3, backend.Name())
		assert.NotNil(t, stale)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{Upload: config.UploadConfig{Backend: "ftp"}}

		_, _, err := storage.NewBackend(context.Background(), cfg, discardLogger)

		assert.Error(t, err)
	})
}
