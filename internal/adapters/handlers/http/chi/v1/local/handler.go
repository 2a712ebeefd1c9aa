package local

import (
	"encoding/json"
	"log/slog"
	"multipart-upload/internal/core/port"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 serves the local append protocol
type HandlerV1 struct {
	store  port.AppendStore
	logger *slog.Logger
}

// NewLocalHandlerV1 creates HandlerV1
func NewLocalHandlerV1(store port.AppendStore, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		store:  store,
		logger: logger,
	}
}

// Register adds the handler routes at the root of router, the uploader
// addresses them without any prefix
func (h *HandlerV1) Register(router chi.Router) {
	router.Post("/local-upload", h.AppendPartV1)
	router.Delete("/local-delete", h.DeleteFileV1)
}

// V1StatusResponse is the response of every local protocol route
type V1StatusResponse struct {
	Data V1Status `json:"data"`
}

// V1Status tells whether the request took effect
type V1Status struct {
	Status bool `json:"status"`
}

func (h *HandlerV1) writeStatus(w http.ResponseWriter, code int, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(V1StatusResponse{Data: V1Status{Status: ok}}); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
