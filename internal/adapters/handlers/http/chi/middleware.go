package chi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// LoggerMiddleware logs one line per request. Chunk appends are logged at
// debug level, a single upload sends many of them.
func LoggerMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if r.URL.Path == "/health" {
					return
				}

				level := slog.LevelInfo
				if r.URL.Path == "/local-upload" && ww.Status() < http.StatusBadRequest {
					level = slog.LevelDebug
				}
				l.Log(r.Context(), level, "http_request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes_in", r.ContentLength,
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
