package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"marketfetch/internal/api/handlers"
	custommiddleware "marketfetch/internal/api/middleware"
	"marketfetch/internal/config"
	"marketfetch/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	fetchService *service.FetchService,
	batchService *service.BatchService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
		})

		quotaHandler := handlers.NewQuotaHandler(fetchService)
		r.Get("/quota", quotaHandler.Usage)
		r.Get("/accounts", quotaHandler.Accounts)

		r.Route("/batch", func(r chi.Router) {
			batchHandler := handlers.NewBatchHandler(batchService)
			r.Post("/", batchHandler.Trigger)
			r.Get("/last", batchHandler.Last)
		})
	})

	return r
}
