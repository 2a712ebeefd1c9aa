package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported upload backends
const (
	BackendLocal = "local"
	BackendMinio = "minio"
	BackendS3    = "s3"
)

// MinRemoteChunkSize is the smallest part, except the last one, S3 compatible stores accept
const MinRemoteChunkSize = 5 << 20

// localRequestOverhead bounds the JSON fields and data URL prefix around a base64 chunk
const localRequestOverhead = 1 << 10

type Config struct {
	Env      Env
	Server   ServerConfig
	Upload   UploadConfig
	Local    LocalConfig
	Minio    MinioConfig
	S3       S3Config
	Database DatabaseConfig
	NATS     NATSConfig
	Cleanup  CleanupConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host         string `envconfig:"SERVER_HOST" default:"localhost"`
	Port         string `envconfig:"SERVER_PORT" default:"8080"`
	MaxBodyBytes int64  `envconfig:"SERVER_MAX_BODY_BYTES" default:"8388608"` // 8MB, a base64 encoded 5MB chunk fits
}

type UploadConfig struct {
	Backend      string        `envconfig:"UPLOAD_BACKEND" default:"local"`
	ChunkSize    int64         `envconfig:"UPLOAD_CHUNK_SIZE" default:"5242880"` // 5MB
	Destination  string        `envconfig:"UPLOAD_DESTINATION" default:"/files/"`
	SourceDir    string        `envconfig:"UPLOAD_SOURCE_DIR" default:"."`
	AbortTimeout time.Duration `envconfig:"UPLOAD_ABORT_TIMEOUT" default:"30s"`
}

// LocalConfig configures both sides of the local append protocol
type LocalConfig struct {
	BaseURL    string `envconfig:"LOCAL_BASE_URL" default:"http://localhost:8080"`
	RetryMax   int    `envconfig:"LOCAL_RETRY_MAX" default:"0"`
	StorageDir string `envconfig:"LOCAL_STORAGE_DIR" default:"./data/uploads"`

	// IdleTimeout is how long the append server remembers the next part of a file
	IdleTimeout time.Duration `envconfig:"LOCAL_IDLE_TIMEOUT" default:"1h"`
}

type MinioConfig struct {
	Endpoint   string `envconfig:"MINIO_ENDPOINT"`
	BucketName string `envconfig:"MINIO_BUCKET_NAME"`
	AccessKey  string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey  string `envconfig:"MINIO_SECRET_KEY"`
	UseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type S3Config struct {
	Region          string `envconfig:"S3_REGION" default:"ap-northeast-2"`
	BucketName      string `envconfig:"S3_BUCKET_NAME"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	UsePathStyle    bool   `envconfig:"S3_USE_PATH_STYLE" default:"false"`
}

// DatabaseConfig is optional, an empty host keeps the upload journal in memory
type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER"`
	Password       string        `envconfig:"DB_PASSWORD"`
	Name           string        `envconfig:"DB_NAME"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// NATSConfig is optional, an empty URL disables upload events
type NATSConfig struct {
	URL        string `envconfig:"NATS_URL"`
	Name       string `envconfig:"NATS_CLIENT_NAME" default:"multipart-upload"`
	StreamName string `envconfig:"NATS_STREAM_NAME" default:"UPLOADS"`
	Subject    string `envconfig:"UPLOAD_EVENTS_SUBJECT" default:"upload.events"`
}

type CleanupConfig struct {
	Every      time.Duration `envconfig:"CLEANUP_EVERY" default:"15m"`
	StaleAfter time.Duration `envconfig:"CLEANUP_STALE_AFTER" default:"24h"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the selected backend has what it needs
func (c *Config) Validate() error {
	if c.Upload.ChunkSize <= 0 {
		return fmt.Errorf("UPLOAD_CHUNK_SIZE must be positive, got %d", c.Upload.ChunkSize)
	}

	switch c.Upload.Backend {
	case BackendLocal:
		if c.Local.BaseURL == "" {
			return fmt.Errorf("LOCAL_BASE_URL is required for the %s backend", BackendLocal)
		}
		if body := localRequestSize(c.Upload.ChunkSize); body > c.Server.MaxBodyBytes {
			return fmt.Errorf("UPLOAD_CHUNK_SIZE %d encodes to %d bytes, above SERVER_MAX_BODY_BYTES %d", c.Upload.ChunkSize, body, c.Server.MaxBodyBytes)
		}
	case BackendMinio:
		if c.Minio.Endpoint == "" || c.Minio.BucketName == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET_NAME are required for the %s backend", BackendMinio)
		}
		if c.Upload.ChunkSize < MinRemoteChunkSize {
			return fmt.Errorf("UPLOAD_CHUNK_SIZE must be at least %d for the %s backend, got %d", MinRemoteChunkSize, BackendMinio, c.Upload.ChunkSize)
		}
	case BackendS3:
		if c.S3.BucketName == "" {
			return fmt.Errorf("S3_BUCKET_NAME is required for the %s backend", BackendS3)
		}
		if c.Upload.ChunkSize < MinRemoteChunkSize {
			return fmt.Errorf("UPLOAD_CHUNK_SIZE must be at least %d for the %s backend, got %d", MinRemoteChunkSize, BackendS3, c.Upload.ChunkSize)
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.Upload.Backend)
	}
	return nil
}

// localRequestSize is the largest body of a local append request carrying chunkSize bytes
func localRequestSize(chunkSize int64) int64 {
	return (chunkSize+2)/3*4 + localRequestOverhead
}
