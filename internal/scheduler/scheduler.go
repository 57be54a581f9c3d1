package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"marketfetch/internal/model"
	"marketfetch/internal/service"
)

// Scheduler runs unattended batch fetches on a cron schedule, one batch
// per configured data kind over the configured universe. Kinds run
// sequentially within a firing so they share the same quota day instead
// of racing each other's account pools.
type Scheduler struct {
	cron    *cron.Cron
	batch   *service.BatchService
	tickers []string
	kinds   []model.DataKind
}

// New creates a Scheduler for the given universe and data kinds.
func New(batch *service.BatchService, tickers []string, kinds []model.DataKind) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		batch:   batch,
		tickers: tickers,
		kinds:   kinds,
	}
}

// Schedule registers the batch run under a cron expression and starts
// the scheduler.
func (s *Scheduler) Schedule(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register schedule %q: %w", spec, err)
	}
	s.cron.Start()
	log.Printf("Scheduler started with schedule %q", spec)
	return nil
}

// RunOnce executes one full fetch cycle for every configured kind.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, kind := range s.kinds {
		summary := s.batch.Run(ctx, s.tickers, kind)
		log.Printf("Batch %s (%s): %d/%d succeeded", summary.ID, kind, summary.Succeeded, summary.Total)
	}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
