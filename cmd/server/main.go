package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketfetch/internal/api"
	"marketfetch/internal/config"
	"marketfetch/internal/database"
	"marketfetch/internal/model"
	"marketfetch/internal/pool"
	"marketfetch/internal/provider"
	"marketfetch/internal/provider/alphavantage"
	"marketfetch/internal/provider/finnhub"
	"marketfetch/internal/provider/yahoo"
	"marketfetch/internal/quota"
	"marketfetch/internal/repository"
	"marketfetch/internal/scheduler"
	"marketfetch/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create services
	systemService := service.NewSystemService(db)
	fetchService, batchService := buildFetchServices(cfg, db)

	// Start the nightly fetch schedule when configured
	if cfg.Fetch.CronSpec != "" && len(cfg.Fetch.Tickers) > 0 {
		sched := scheduler.New(batchService, cfg.Fetch.Tickers, scheduledKinds(cfg))
		if err := sched.Schedule(cfg.Fetch.CronSpec); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Create router
	router := api.NewRouter(systemService, fetchService, batchService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// scheduledKinds returns the data kinds that have at least one provider
// configured, in a fixed order.
func scheduledKinds(cfg *config.Config) []model.DataKind {
	var kinds []model.DataKind
	for _, kind := range []model.DataKind{model.KindFundamentals, model.KindPricing, model.KindRatings} {
		if len(cfg.Fetch.Priority[kind]) > 0 {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// buildFetchServices wires the acquisition engine: one adapter and one
// account pool per enabled provider, the durable rate limiter, the
// fallback orchestrator and the batch runner.
func buildFetchServices(cfg *config.Config, db *sql.DB) (*service.FetchService, *service.BatchService) {
	client := provider.NewHTTPClient(provider.DefaultTimeout)

	adapters := map[string]provider.Adapter{}
	pools := map[string]*pool.Pool{}
	var providers []model.Provider

	for _, pc := range cfg.Fetch.Providers {
		var adapter provider.Adapter
		switch pc.Provider.ID {
		case "yahoo":
			adapter = yahoo.New(client)
		case "finnhub":
			adapter = finnhub.New(client)
		case "alphavantage":
			adapter = alphavantage.New(client)
		default:
			log.Fatalf("No adapter implemented for provider %q", pc.Provider.ID)
		}
		adapters[pc.Provider.ID] = adapter
		pools[pc.Provider.ID] = pool.New(pc.Provider, pc.APIKeys, nil)

		// The durable provider ceiling spans the whole account pool.
		limits := pc.Provider
		limits.CallsPerDay *= len(pc.APIKeys)
		providers = append(providers, limits)
	}

	limiter := quota.NewLimiter(quota.NewStore(db), providers, nil)
	store := repository.NewRecordStore(db)

	fetchService := service.NewFetchService(limiter, pools, adapters, cfg.Fetch.Priority, store)
	batchService := service.NewBatchService(fetchService, cfg.Fetch.Workers, cfg.Fetch.BatchDeadline)
	return fetchService, batchService
}
