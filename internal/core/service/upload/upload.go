package upload

import (
	"context"
	"fmt"
	"log/slog"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
	"sync"

	"github.com/google/uuid"
)

type uploadService struct {
	backend port.UploadBackend
	guard   port.LifecycleGuard
	cfg     config.UploadConfig
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewUploadService creates a new upload service bound to one backend
func NewUploadService(backend port.UploadBackend, guard port.LifecycleGuard, cfg config.UploadConfig, logger *slog.Logger) port.UploadService {
	return &uploadService{
		backend:  backend,
		guard:    guard,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Upload sends req.File part by part and blocks until the session reaches a
// terminal state. It returns ErrUploadCancelled when cancellation won, and an
// *domain.UploadError when the backend failed.
func (u *uploadService) Upload(ctx context.Context, req port.UploadRequest) (*domain.UploadResult, error) {
	if req.File.Size <= 0 {
		return nil, domain.ErrEmptyFile
	}
	if u.cfg.ChunkSize <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if limiter, ok := u.backend.(port.PartLimiter); ok {
		if parts := domain.PartCount(req.File.Size, u.cfg.ChunkSize); parts > limiter.MaxParts() {
			return nil, fmt.Errorf("%w: %d parts needed, %s accepts %d", domain.ErrTooManyParts, parts, u.backend.Name(), limiter.MaxParts())
		}
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	s := newSession(id, req, u.cfg.ChunkSize)

	if err := u.register(s); err != nil {
		return nil, err
	}
	defer u.unregister(s.id)

	u.run(ctx, s)

	switch s.state {
	case domain.StateComplete:
		return s.result(), nil
	case domain.StateCancelled:
		return s.result(), domain.ErrUploadCancelled
	default:
		return s.result(), s.failure
	}
}

// RequestCancel flags an active session, it stops at its next part boundary
func (u *uploadService) RequestCancel(id uuid.UUID) error {
	u.mu.Lock()
	s, ok := u.sessions[id]
	u.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	s.cancelRequested.Store(true)
	u.logger.Info("upload cancellation requested", "upload_id", id)
	return nil
}

func (u *uploadService) register(s *session) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.sessions[s.id]; ok {
		return domain.ErrSessionAlreadyObserved
	}

	err := u.guard.Observe(s.id, func() {
		s.cancelRequested.Store(true)
		u.abort(s)
	})
	if err != nil {
		return err
	}

	u.sessions[s.id] = s
	return nil
}

func (u *uploadService) unregister(id uuid.UUID) {
	u.mu.Lock()
	defer u.mu.Unlock()

	delete(u.sessions, id)
}
