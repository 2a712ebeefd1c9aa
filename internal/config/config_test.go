package config_test

import (
	"multipart-upload/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Act
	cfg, err := config.Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, config.BackendLocal, cfg.Upload.Backend)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.ChunkSize)
	assert.Equal(t, "/files/", cfg.Upload.Destination)
	assert.Equal(t, 30*time.Second, cfg.Upload.AbortTimeout)
	assert.Equal(t, 0, cfg.Local.RetryMax)
	assert.Equal(t, "ap-northeast-2", cfg.S3.Region)
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.StaleAfter)
}

func TestLoad_Minio(t *testing.T) {
	t.Run("missing endpoint", func(t *testing.T) {
		// Arrange
		t.Setenv("UPLOAD_BACKEND", "minio")

		// Act
		cfg, err := config.Load()

		// Assert
		require.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("configured", func(t *testing.T) {
		// Arrange
		t.Setenv("UPLOAD_BACKEND", "minio")
		t.Setenv("MINIO_ENDPOINT", "localhost:9000")
		t.Setenv("MINIO_BUCKET_NAME", "uploads")
		t.Setenv("UPLOAD_CHUNK_SIZE", "8388608")

		// Act
		cfg, err := config.Load()

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "localhost:9000", cfg.Minio.Endpoint)
		assert.Equal(t, "uploads", cfg.Minio.BucketName)
		assert.Equal(t, int64(8388608), cfg.Upload.ChunkSize)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{
			name:    "unknown backend",
			cfg:     config.Config{Upload: config.UploadConfig{Backend: "ftp", ChunkSize: 10}},
			wantErr: true,
		},
		{
			name:    "non positive chunk size",
			cfg:     config.Config{Upload: config.UploadConfig{Backend: config.BackendLocal, ChunkSize: 0}, Local: config.LocalConfig{BaseURL: "http://x"}},
			wantErr: true,
		},
		{
			name:    "s3 without bucket",
			cfg:     config.Config{Upload: config.UploadConfig{Backend: config.BackendS3, ChunkSize: 10}},
			wantErr: true,
		},
		{
			name:    "s3 with bucket",
			cfg:     config.Config{Upload: config.UploadConfig{Backend: config.BackendS3, ChunkSize: config.MinRemoteChunkSize}, S3: config.S3Config{BucketName: "b"}},
			wantErr: false,
		},
		{
			name:    "s3 chunk below part minimum",
			cfg:     config.Config{Upload: config.UploadConfig{Backend: config.BackendS3, ChunkSize: config.MinRemoteChunkSize - 1}, S3: config.S3Config{BucketName: "b"}},
			wantErr: true,
		},
		{
			name:    "minio chunk below part minimum",
			cfg:     config.Config{Upload: config.UploadConfig{Backend: config.BackendMinio, ChunkSize: 1 << 20}, Minio: config.MinioConfig{Endpoint: "localhost:9000", BucketName: "b"}},
			wantErr: true,
		},
		{
			name: "local chunk fits the request body",
			cfg: config.Config{
				Upload: config.UploadConfig{Backend: config.BackendLocal, ChunkSize: 5 << 20},
				Local:  config.LocalConfig{BaseURL: "http://x"},
				Server: config.ServerConfig{MaxBodyBytes: 8 << 20},
			},
			wantErr: false,
		},
		{
			name: "local chunk exactly at the request body limit",
			cfg: config.Config{
				Upload: config.UploadConfig{Backend: config.BackendLocal, ChunkSize: 3},
				Local:  config.LocalConfig{BaseURL: "http://x"},
				Server: config.ServerConfig{MaxBodyBytes: 4 + 1024},
			},
			wantErr: false,
		},
		{
			name: "local chunk just above the request body limit",
			cfg: config.Config{
				Upload: config.UploadConfig{Backend: config.BackendLocal, ChunkSize: 4},
				Local:  config.LocalConfig{BaseURL: "http://x"},
				Server: config.ServerConfig{MaxBodyBytes: 4 + 1024},
			},
			wantErr: true,
		},
		{
			name: "local chunk above the request body limit",
			cfg: config.Config{
				Upload: config.UploadConfig{Backend: config.BackendLocal, ChunkSize: 7 << 20},
				Local:  config.LocalConfig{BaseURL: "http://x"},
				Server: config.ServerConfig{MaxBodyBytes: 8 << 20},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
