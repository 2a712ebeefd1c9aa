package upload_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"multipart-upload/internal/adapters/handlers/http/chi"
	upload2 "multipart-upload/internal/adapters/handlers/http/chi/v1/upload"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/service/tracker"
	http2 "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestStartUploadV1(t *testing.T) {
	t.Run("success - upload accepted", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		mockTracker := tracker.NewMockTrackerService()
		mockTracker.On("Start", mock.Anything, "videos/match.mp4", "/archive/").Return(id, nil).Once()

		handler := upload2.NewUploadHandlerV1(mockTracker, discardLogger)
		h := chi.NewRouter(discardLogger, nil, handler, "", 1<<20)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodPost, "/api/v1/upload",
			strings.NewReader(`{"source_path":"videos/match.mp4","destination":"/archive/"}`))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusAccepted, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response upload2.V1StartUploadResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, id, response.UploadID)
		mockTracker.AssertExpectations(t)
	})

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantCode   int
	}{
		{name: "error - invalid json", body: `{`, wantCode: http2.StatusBadRequest},
		{name: "error - missing source path", body: `{"destination":"/files/"}`, wantCode: http2.StatusBadRequest},
		{name: "error - source not found", body: `{"source_path":"nope.bin"}`, serviceErr: domain.ErrSourceNotFound, wantCode: http2.StatusNotFound},
		{name: "error - empty source", body: `{"source_path":"empty.bin"}`, serviceErr: domain.ErrEmptyFile, wantCode: http2.StatusUnprocessableEntity},
		{name: "error - journal unavailable", body: `{"source_path":"a.bin"}`, serviceErr: errors.New("db down"), wantCode: http2.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockTracker := tracker.NewMockTrackerService()
			if tt.serviceErr != nil {
				mockTracker.On("Start", mock.Anything, mock.Anything, mock.Anything).Return(uuid.Nil, tt.serviceErr).Once()
			}

			handler := upload2.NewUploadHandlerV1(mockTracker, discardLogger)
			h := chi.NewRouter(discardLogger, nil, handler, "", 1<<20)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http2.MethodPost, "/api/v1/upload", strings.NewReader(tt.body))

			// Act
			h.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tt.wantCode, w.Code)
			mockTracker.AssertExpectations(t)
		})
	}
}
