package local

import (
	"encoding/json"
	"errors"
	"multipart-upload/internal/core/domain"
	"net/http"
)

// V1DeleteFileRequest is the request to drop a partially written file
type V1DeleteFileRequest struct {
	FileName string `json:"file_name"`
}

// DeleteFileV1 is the function that handles DeleteFile. Deleting a missing
// file succeeds.
func (h *HandlerV1) DeleteFileV1(w http.ResponseWriter, r *http.Request) {
	var req V1DeleteFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeStatus(w, http.StatusBadRequest, false)
		return
	}

	err := h.store.Delete(r.Context(), req.FileName)
	switch {
	case errors.Is(err, domain.ErrInvalidFileName):
		h.writeStatus(w, http.StatusBadRequest, false)
	case err != nil:
		h.logger.Error("error deleting file", "file_name", req.FileName, "error", err)
		h.writeStatus(w, http.StatusInternalServerError, false)
	default:
		h.writeStatus(w, http.StatusOK, true)
	}
}
