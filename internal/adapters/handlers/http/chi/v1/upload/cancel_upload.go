package upload

import (
	"errors"
	"multipart-upload/internal/core/domain"
	"net/http"
)

// CancelUploadV1 is the function that handles CancelUpload. The upload stops
// at its next part boundary, poll GetUploadV1 for the outcome.
func (h *HandlerV1) CancelUploadV1(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUploadID(w, r)
	if !ok {
		return
	}

	err := h.tracker.Cancel(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "no active upload", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error cancelling upload", "upload_id", id, "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	default:
		w.WriteHeader(http.StatusAccepted)
		return
	}
}
