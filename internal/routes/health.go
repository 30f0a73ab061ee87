package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/giannis84/character-favourites/internal/logging"
	"github.com/go-chi/chi/v5"
)

// Pinger reports whether the favourites storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

// RegisterHealthRoutes creates the health check endpoints.
func RegisterHealthRoutes(storage Pinger) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()

			if err := storage.Ping(ctx); err != nil {
				logging.Log(r.Context()).Layer("routes").Op("ready").Err(err).
					Warn("storage not ready")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("storage not ready"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})
	}
}
