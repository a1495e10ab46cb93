package api

import (
	"net/http"
	"time"

	"comp-machine/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Valuation.TimeoutSeconds) * time.Second))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", h.HandleHealth)

		// Comp scoring and filtering
		r.Route("/comps", func(r chi.Router) {
			r.Post("/score", h.HandleScoreComp)
			r.Post("/validate", h.HandleValidateComp)
			r.Post("/filter", h.HandleFilterComps)
		})

		// Valuations
		r.Route("/valuations", func(r chi.Router) {
			r.Post("/", h.HandleValuate)
			r.Get("/runs", h.HandleGetValuationRuns)
		})

		// Repairs
		r.Post("/repairs/estimate", h.HandleEstimateRepairs)

		// Market data
		r.Route("/market/{zip}", func(r chi.Router) {
			r.Get("/", h.HandleGetMarket)
			r.Get("/trend", h.HandleGetTrend)
			r.Post("/trend", h.HandleAnalyzeTrend)
		})

		// Deal tracking
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", h.HandleGetDeals)
			r.Post("/", h.HandleCreateDeal)
			r.Get("/{id}", h.HandleGetDeal)
			r.Post("/{id}/contract", h.HandleContractDeal)
			r.Post("/{id}/close", h.HandleCloseDeal)
			r.Post("/{id}/flip", h.HandleFlipDeal)
			r.Get("/{id}/recommendations", h.HandleDealRecommendations)
		})

		// Portfolio performance
		r.Get("/performance", h.HandleGetPerformance)
	})

	return r
}

// CORSMiddleware returns CORS middleware with the specified allowed origins
func CORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
