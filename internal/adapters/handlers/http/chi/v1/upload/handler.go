package upload

import (
	"log/slog"
	"multipart-upload/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 upload routes
type HandlerV1 struct {
	tracker port.TrackerService
	logger  *slog.Logger
}

// NewUploadHandlerV1 creates HandlerV1
func NewUploadHandlerV1(tracker port.TrackerService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		tracker: tracker,
		logger:  logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.StartUploadV1)
	router.Get("/{uploadID}", h.GetUploadV1)
	router.Delete("/{uploadID}", h.CancelUploadV1)

	return router
}
