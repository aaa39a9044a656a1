// Package rest exposes the recommendation service over HTTP.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/services"
)

// RecommendationService is the core API the handler depends on.
type RecommendationService interface {
	Recommend(ctx context.Context, req services.Request) (services.Result, error)
	Search(ctx context.Context, query string) ([]domain.Track, error)
}

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins       []string
	RateLimitRequests int // per IP per window; 0 disables
	RateLimitWindow   time.Duration
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    RecommendationService
	router chi.Router
	opts   Options
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc RecommendationService, opts Options) *Handler {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}

	h := &Handler{
		svc:    svc,
		router: chi.NewRouter(),
		opts:   opts,
	}
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the middleware chain and the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.Use(requestID)
	h.router.Use(chimiddleware.Recoverer)
	h.router.Use(observe)
	h.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	h.router.Get("/health", h.HealthCheck)
	h.router.Handle("/metrics", promhttp.Handler())

	h.router.Route("/api", func(r chi.Router) {
		if h.opts.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(h.opts.RateLimitRequests, h.opts.RateLimitWindow))
		}
		r.Get("/search", h.Search)
		r.Get("/recommendations", h.Recommendations)
		r.Post("/ai-recommendations", h.AIRecommendations)
	})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
