package chi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"multipart-upload/internal/adapters/handlers/http/chi"
	http2 "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouter(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := chi.NewRouter(discardLogger, nil, nil, "prod", 1<<20)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http2.MethodGet, "/health", nil))

		assert.Equal(t, http2.StatusOK, w.Code)
		var response chi.HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "ok", response.Status)
	})

	t.Run("routes of nil handlers are not served", func(t *testing.T) {
		for _, path := range []string{"/local-upload", "/api/v1/upload"} {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http2.MethodPost, path, nil))

			assert.Equal(t, http2.StatusNotFound, w.Code, path)
		}
	})
}
