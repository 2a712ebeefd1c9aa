package upload

import (
	"encoding/json"
	"errors"
	"multipart-upload/internal/core/domain"
	"net/http"

	"github.com/google/uuid"
)

// V1StartUploadRequest is the request to start uploading a server side file
type V1StartUploadRequest struct {
	SourcePath  string `json:"source_path"`
	Destination string `json:"destination"`
}

// V1StartUploadResponse is the response to start upload
type V1StartUploadResponse struct {
	UploadID uuid.UUID `json:"upload_id"`
}

// StartUploadV1 is the function that handles StartUpload
func (h *HandlerV1) StartUploadV1(w http.ResponseWriter, r *http.Request) {
	var req V1StartUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SourcePath == "" {
		http.Error(w, "source_path is required", http.StatusBadRequest)
		return
	}

	id, err := h.tracker.Start(r.Context(), req.SourcePath, req.Destination)
	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		http.Error(w, "source file not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrEmptyFile):
		http.Error(w, "source file is empty", http.StatusUnprocessableEntity)
		return
	case err != nil:
		h.logger.Error("error starting upload", "source_path", req.SourcePath, "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(V1StartUploadResponse{UploadID: id}); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
		return
	}
}
