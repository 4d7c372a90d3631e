package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes
// configured. The health endpoint is unauthenticated; everything else
// requires bearer auth. Rate limiting is applied globally: 60
// requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))

		r.Get("/api/v1/recommendations", handlers.GetRecommendations)
		r.Get("/api/v1/recommendations/trending", handlers.GetTrending)
		r.Get("/api/v1/recommendations/similar/{id}", handlers.GetSimilar)
		r.Get("/api/v1/transport", handlers.GetTransport)
		r.Get("/api/v1/budget", handlers.GetBudget)
		r.Get("/api/v1/trip-cost", handlers.GetTripCost)
		r.Post("/api/v1/admin/popularity/recalculate", handlers.RecalculatePopularity)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
