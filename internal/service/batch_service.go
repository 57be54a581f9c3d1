package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marketfetch/internal/model"
)

// BatchService processes a universe of tickers for one data kind through
// a bounded worker pool. Pool size is deliberately small: providers
// impose global per-minute ceilings that one goroutine per ticker would
// blow through instantly. No ordering across tickers is guaranteed.
type BatchService struct {
	fetch    *FetchService
	workers  int
	deadline time.Duration

	mu   sync.Mutex
	last *model.BatchSummary
}

// NewBatchService creates a new BatchService. A zero deadline disables
// the batch time limit.
func NewBatchService(fetch *FetchService, workers int, deadline time.Duration) *BatchService {
	if workers < 1 {
		workers = 1
	}
	return &BatchService{fetch: fetch, workers: workers, deadline: deadline}
}

// Run fetches one data kind for every ticker and aggregates the
// outcomes. When the batch deadline passes, the dispatcher stops
// enqueuing new tickers and in-flight requests finish; results already
// produced are preserved.
func (s *BatchService) Run(ctx context.Context, tickers []string, kind model.DataKind) model.BatchSummary {
	summary := model.BatchSummary{
		ID:         uuid.New().String(),
		Kind:       kind,
		StartedAt:  time.Now().UTC(),
		ByProvider: map[string]int{},
	}

	s.fetch.SetUniverse(tickers)

	dispatchCtx := ctx
	if s.deadline > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	requests := make(chan string)
	results := make(chan model.FetchResult, len(tickers))

	g := new(errgroup.Group)
	g.Go(func() error {
		defer close(requests)
		for i, ticker := range tickers {
			select {
			case <-dispatchCtx.Done():
				log.Printf("Batch %s: deadline reached, %d tickers not dispatched", summary.ID, len(tickers)-i)
				return nil
			case requests <- ticker:
			}
		}
		return nil
	})

	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			for ticker := range requests {
				// In-flight requests run against the parent context so a
				// batch deadline stops dispatch without aborting them.
				results <- s.fetch.Fetch(ctx, ticker, kind)
			}
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	exhaustedOnly := true
	for r := range results {
		summary.Total++
		if r.Success {
			summary.Succeeded++
			summary.ByProvider[r.Provider]++
		} else {
			summary.Failed++
			summary.Failures = append(summary.Failures, r)
			if !r.Exhausted {
				exhaustedOnly = false
			}
		}
	}
	summary.Systemic = summary.Total > 0 && summary.Succeeded == 0 && exhaustedOnly
	summary.FinishedAt = time.Now().UTC()

	if summary.Systemic {
		log.Printf("Batch %s: systemic failure, every provider exhausted for all %d tickers", summary.ID, summary.Total)
	}

	s.mu.Lock()
	s.last = &summary
	s.mu.Unlock()

	return summary
}

// LastSummary returns the most recent batch summary, or nil when no
// batch has run yet.
func (s *BatchService) LastSummary() *model.BatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
