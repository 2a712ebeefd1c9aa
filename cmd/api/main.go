package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"multipart-upload/internal/adapters/eventbroker"
	"multipart-upload/internal/adapters/eventbroker/nats"
	"multipart-upload/internal/adapters/handlers/http/chi"
	"multipart-upload/internal/adapters/handlers/http/chi/v1/local"
	"multipart-upload/internal/adapters/handlers/http/chi/v1/upload"
	"multipart-upload/internal/adapters/repository/memory"
	"multipart-upload/internal/adapters/repository/postgres"
	"multipart-upload/internal/adapters/storage"
	"multipart-upload/internal/adapters/storage/appendfs"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/port"
	"multipart-upload/internal/core/service/cleanup"
	"multipart-upload/internal/core/service/lifecycle"
	"multipart-upload/internal/core/service/tracker"
	uploadservice "multipart-upload/internal/core/service/upload"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	//journal
	records, closeRecords, err := initRecords(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to init upload journal", "error", err)
		os.Exit(1)
	}
	defer closeRecords()

	//events
	events, err := initEvents(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := events.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}()

	//storage
	backend, staleUploads, err := storage.NewBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init upload backend", "backend", cfg.Upload.Backend, "error", err)
		os.Exit(1)
	}
	appendStore, err := appendfs.NewStore(cfg.Local.StorageDir, cfg.Local.IdleTimeout, logger)
	if err != nil {
		logger.Error("failed to init local storage", "dir", cfg.Local.StorageDir, "error", err)
		os.Exit(1)
	}

	//services
	guard := lifecycle.NewGuard(logger)
	uploadService := uploadservice.NewUploadService(backend, guard, cfg.Upload, logger)
	trackerService := tracker.NewTrackerService(ctx, uploadService, records, events,
		osfs.New(cfg.Upload.SourceDir), cfg.Upload.Backend, cfg.Upload, logger)
	cleanupService := cleanup.NewCleanupService(records, staleUploads, cfg.Cleanup.StaleAfter, logger)

	//http
	localHandler := local.NewLocalHandlerV1(appendStore, logger)
	uploadHandler := upload.NewUploadHandlerV1(trackerService, logger)

	router := chi.NewRouter(logger, localHandler, uploadHandler, cfg.Env.Env, cfg.Server.MaxBodyBytes)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port, "backend", cfg.Upload.Backend)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init cleanup task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initCleanupTask(ctx, cleanupService, cfg.Cleanup.Every, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app", "active_uploads", guard.Active())

	// uploads see the cancelled context at their next part boundary and abort,
	// the local backend still needs the server for that
	if !waitUploads(trackerService, cfg.Upload.AbortTimeout) {
		logger.Warn("uploads still running, tearing down", "active_uploads", guard.Active())
		guard.Teardown()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initRecords(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (port.UploadRecordRepository, func(), error) {
	if cfg.Host == "" {
		logger.Info("no database configured, upload journal kept in memory")
		return memory.NewUploadRecordRepository(), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("db connection established")

	return postgres.NewSQLUploadRecordRepository(db), func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}, nil
}

func initEvents(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (port.EventPublisher, error) {
	if cfg.URL == "" {
		logger.Info("no NATS configured, upload events disabled")
		return eventbroker.NewNoopPublisher(logger), nil
	}

	publisher, err := nats.NewNATSPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("NATS publisher initialized", "stream", cfg.StreamName, "subject", cfg.Subject)
	return publisher, nil
}

func waitUploads(service port.TrackerService, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		service.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("cleanup task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			logger.Info("cleanup task starting")
			err := service.CleanupStaleUploads(ctx, time.Now())
			if err != nil {
				logger.Error("failed to cleanup stale uploads", "error", err)
			} else {
				logger.Info("cleanup task completed successfully")
			}
		case <-ctx.Done():
			logger.Info("cleanup task stopped")
			return
		}
	}

}
