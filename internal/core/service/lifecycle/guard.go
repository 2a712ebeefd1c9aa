package lifecycle

import (
	"log/slog"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
	"sync"

	"github.com/google/uuid"
)

type registry struct {
	mu       sync.Mutex
	cleanups map[uuid.UUID]func()
	logger   *slog.Logger
}

// NewGuard creates a lifecycle guard holding one cleanup per active session
func NewGuard(logger *slog.Logger) port.LifecycleGuard {
	return &registry{
		cleanups: make(map[uuid.UUID]func()),
		logger:   logger,
	}
}

// Observe registers the cleanup of a session
func (r *registry) Observe(id uuid.UUID, cleanup func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cleanups[id]; ok {
		return domain.ErrSessionAlreadyObserved
	}
	r.cleanups[id] = cleanup
	return nil
}

// Unobserve drops the cleanup of a session, it is a no-op for unknown ids
func (r *registry) Unobserve(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cleanups, id)
}

func (r *registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cleanups)
}

// Teardown empties the registry and runs every cleanup on its own goroutine
func (r *registry) Teardown() {
	r.mu.Lock()
	cleanups := r.cleanups
	r.cleanups = make(map[uuid.UUID]func())
	r.mu.Unlock()

	for id, cleanup := range cleanups {
		r.logger.Warn("teardown while upload active, running cleanup", "upload_id", id)
		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("upload cleanup panicked", "upload_id", id, "panic", rec)
				}
			}()
			cleanup()
		}()
	}
}
