package chi

import (
	"encoding/json"
	"log/slog"
	"multipart-upload/internal/adapters/handlers/http/chi/v1/local"
	"multipart-upload/internal/adapters/handlers/http/chi/v1/upload"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds http.Handler with chi. Either handler may be nil, its
// routes are then not served.
func NewRouter(logger *slog.Logger, localHandler *local.HandlerV1, uploadHandler *upload.HandlerV1, env string, maxBodyBytes int64) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	// base64 grows a chunk by a third
	r.Use(middleware.RequestSize(maxBodyBytes))

	if env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if localHandler != nil {
		r.Group(localHandler.Register)
	}

	if uploadHandler != nil {
		r.Route("/api/v1", func(r chi.Router) {
			r.Mount("/upload", uploadHandler.Routes())
		})
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
