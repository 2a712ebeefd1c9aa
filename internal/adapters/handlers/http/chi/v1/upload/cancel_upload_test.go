package upload_test

import (
	"errors"
	"multipart-upload/internal/adapters/handlers/http/chi"
	upload2 "multipart-upload/internal/adapters/handlers/http/chi/v1/upload"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/service/tracker"
	http2 "net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCancelUploadV1(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantCode   int
	}{
		{name: "success - cancel requested", wantCode: http2.StatusAccepted},
		{name: "error - no active upload", serviceErr: domain.ErrSessionNotFound, wantCode: http2.StatusNotFound},
		{name: "error - unexpected", serviceErr: errors.New("boom"), wantCode: http2.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			id := uuid.New()
			mockTracker := tracker.NewMockTrackerService()
			mockTracker.On("Cancel", mock.Anything, id).Return(tt.serviceErr).Once()

			handler := upload2.NewUploadHandlerV1(mockTracker, discardLogger)
			h := chi.NewRouter(discardLogger, nil, handler, "", 1<<20)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http2.MethodDelete, "/api/v1/upload/"+id.String(), nil)

			// Act
			h.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tt.wantCode, w.Code)
			mockTracker.AssertExpectations(t)
		})
	}
}
