package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"multipart-upload/internal/adapters/storage"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
	"multipart-upload/internal/core/service/lifecycle"
	"multipart-upload/internal/core/service/upload"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
)

func main() {
	var (
		filePath    string
		destination string
	)

	flag.StringVar(&filePath, "file", "", "Path of the file to upload")
	flag.StringVar(&destination, "dest", "", "Destination directory (default UPLOAD_DESTINATION)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if filePath == "" {
		logger.Error("-file flag is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if destination == "" {
		destination = cfg.Upload.Destination
	}

	ctx := context.Background()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Error("failed to open file", "path", filePath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Error("failed to stat file", "path", filePath, "error", err)
		os.Exit(1)
	}

	backend, _, err := storage.NewBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init upload backend", "backend", cfg.Upload.Backend, "error", err)
		os.Exit(1)
	}

	guard := lifecycle.NewGuard(logger)
	service := upload.NewUploadService(backend, guard, cfg.Upload, logger)
	id := uuid.New()

	// first signal asks the upload to stop at the next part boundary,
	// the second tears down whatever is still open and leaves
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go watchSignals(sigs, service, guard, id, cfg.Upload.AbortTimeout, logger)

	req := port.UploadRequest{
		ID: id,
		File: domain.SourceFile{
			Name:   filepath.Base(filePath),
			Size:   info.Size(),
			Reader: f,
		},
		Destination: destination,
		OnProgress: func(percent int, bytesSent int64) {
			fmt.Printf("progress: %d%% (%d/%d bytes)\n", percent, bytesSent, info.Size())
		},
		OnComplete: func(location string) {
			fmt.Printf("complete: %s\n", location)
		},
		OnCancel: func() {
			fmt.Println("cancelled")
		},
		OnFailure: func(partIndex int, err error) {
			fmt.Printf("failed at part %d: %v\n", partIndex, err)
		},
	}

	result, err := service.Upload(ctx, req)
	switch {
	case errors.Is(err, domain.ErrUploadCancelled):
		os.Exit(130)
	case err != nil:
		logger.Error("upload failed", "upload_id", id, "error", err)
		os.Exit(1)
	default:
		logger.Info("upload complete", "upload_id", id, "location", result.Location, "parts", result.Parts)
	}
}

func watchSignals(sigs <-chan os.Signal, service port.UploadService, guard port.LifecycleGuard, id uuid.UUID, abortTimeout time.Duration, logger *slog.Logger) {
	<-sigs
	logger.Info("cancelling upload, interrupt again to force exit", "upload_id", id)
	if err := service.RequestCancel(id); err != nil {
		logger.Warn("failed to request cancel", "upload_id", id, "error", err)
	}

	<-sigs
	logger.Warn("forcing exit", "active_uploads", guard.Active())
	guard.Teardown()
	// teardown does not wait, give the abort a chance to reach the backend
	time.Sleep(min(abortTimeout, 2*time.Second))
	os.Exit(130)
}
