package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

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
	tickersFlag := flag.String("tickers", "", "comma-separated ticker symbols (overrides TICKERS)")
	tickersFile := flag.String("tickers-file", "", "path to a newline-separated ticker file")
	kindFlag := flag.String("kind", "pricing", "data kind: fundamentals, pricing or ratings")
	cronMode := flag.Bool("cron", false, "run unattended on the FETCH_CRON schedule")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	tickers, err := resolveTickers(*tickersFlag, *tickersFile, cfg)
	if err != nil {
		log.Fatalf("Failed to resolve ticker universe: %v", err)
	}
	if len(tickers) == 0 {
		log.Fatal("No tickers configured: use -tickers, -tickers-file or TICKERS")
	}

	_, batchService := buildFetchServices(cfg, db)

	if *cronMode {
		runScheduled(cfg, batchService, tickers)
		return
	}

	kind, err := model.ParseDataKind(*kindFlag)
	if err != nil {
		log.Fatalf("Invalid -kind: %v", err)
	}

	summary := batchService.Run(context.Background(), tickers, kind)
	printSummary(summary)
	if summary.Systemic {
		os.Exit(1)
	}
}

// runScheduled blocks running batches on the configured cron schedule
// until interrupted.
func runScheduled(cfg *config.Config, batchService *service.BatchService, tickers []string) {
	if cfg.Fetch.CronSpec == "" {
		log.Fatal("FETCH_CRON must be set for -cron mode")
	}

	kinds := scheduledKinds(cfg)
	sched := scheduler.New(batchService, tickers, kinds)
	if err := sched.Schedule(cfg.Fetch.CronSpec); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stopping scheduler...")
	sched.Stop()
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

func resolveTickers(flagValue, filePath string, cfg *config.Config) ([]string, error) {
	if flagValue != "" {
		var tickers []string
		for _, t := range strings.Split(flagValue, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, strings.ToUpper(t))
			}
		}
		return tickers, nil
	}

	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open ticker file: %w", err)
		}
		defer f.Close()

		var tickers []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			tickers = append(tickers, strings.ToUpper(line))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read ticker file: %w", err)
		}
		return tickers, nil
	}

	return cfg.Fetch.Tickers, nil
}

func printSummary(summary model.BatchSummary) {
	log.Printf("Batch %s (%s) finished in %s", summary.ID, summary.Kind, summary.FinishedAt.Sub(summary.StartedAt))
	log.Printf("  total=%d succeeded=%d failed=%d", summary.Total, summary.Succeeded, summary.Failed)
	for providerID, count := range summary.ByProvider {
		log.Printf("  %s: %d", providerID, count)
	}
	for _, f := range summary.Failures {
		log.Printf("  FAILED %s: %s", f.Ticker, f.Error)
	}
	if summary.Systemic {
		log.Print("  systemic failure: every provider exhausted for all tickers")
	}
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
