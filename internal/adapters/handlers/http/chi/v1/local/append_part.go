package local

import (
	"encoding/json"
	"errors"
	"multipart-upload/internal/core/domain"
	"net/http"
)

// V1AppendPartRequest is the request to append a chunk to a file
type V1AppendPartRequest struct {
	Data      string `json:"data"`
	FileName  string `json:"file_name"`
	PartIndex int    `json:"part_index"`
}

// AppendPartV1 is the function that handles AppendPart
func (h *HandlerV1) AppendPartV1(w http.ResponseWriter, r *http.Request) {
	var req V1AppendPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeStatus(w, http.StatusRequestEntityTooLarge, false)
			return
		}
		h.writeStatus(w, http.StatusBadRequest, false)
		return
	}
	if req.PartIndex < 1 {
		h.writeStatus(w, http.StatusBadRequest, false)
		return
	}

	data, err := domain.DecodeDataURL(req.Data)
	if err != nil {
		h.logger.Debug("undecodable chunk", "file_name", req.FileName, "part_index", req.PartIndex, "error", err)
		h.writeStatus(w, http.StatusBadRequest, false)
		return
	}

	err = h.store.AppendPart(r.Context(), req.FileName, req.PartIndex, data)
	switch {
	case errors.Is(err, domain.ErrInvalidFileName):
		h.writeStatus(w, http.StatusBadRequest, false)
	case errors.Is(err, domain.ErrOutOfOrderPart):
		h.logger.Warn("out of order chunk", "file_name", req.FileName, "part_index", req.PartIndex)
		h.writeStatus(w, http.StatusConflict, false)
	case err != nil:
		h.logger.Error("error appending chunk", "file_name", req.FileName, "part_index", req.PartIndex, "error", err)
		h.writeStatus(w, http.StatusInternalServerError, false)
	default:
		h.writeStatus(w, http.StatusOK, true)
	}
}
