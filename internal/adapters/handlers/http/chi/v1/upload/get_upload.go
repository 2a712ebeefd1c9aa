package upload

import (
	"encoding/json"
	"errors"
	"multipart-upload/internal/core/domain"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// V1UploadResponse is the response to get upload
type V1UploadResponse struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	ObjectKey string    `json:"object_key"`
	Backend   string    `json:"backend"`
	State     string    `json:"state"`
	SizeBytes int64     `json:"size_bytes"`
	BytesSent int64     `json:"bytes_sent"`
	Percent   int       `json:"percent"`
	Parts     int       `json:"parts"`
	Location  string    `json:"location,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func parseUploadID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	uploadID := chi.URLParam(r, "uploadID")
	if uploadID == "" {
		http.Error(w, "upload id is required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(uploadID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// GetUploadV1 is the function that handles GetUpload
func (h *HandlerV1) GetUploadV1(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUploadID(w, r)
	if !ok {
		return
	}

	record, err := h.tracker.Get(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		http.Error(w, "upload not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error getting upload", "upload_id", id, "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	default:
		resp := V1UploadResponse{
			ID:        record.ID,
			FileName:  record.FileName,
			ObjectKey: record.ObjectKey,
			Backend:   record.Backend,
			State:     string(record.State),
			SizeBytes: record.SizeBytes,
			BytesSent: record.BytesSent,
			Percent:   record.Percent(),
			Parts:     record.Parts,
			Location:  record.Location,
			Error:     record.Error,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
		return
	}
}
