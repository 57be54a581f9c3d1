package scheduler

import (
	"context"
	"testing"

	"marketfetch/internal/model"
	"marketfetch/internal/pool"
	"marketfetch/internal/provider"
	"marketfetch/internal/quota"
	"marketfetch/internal/repository"
	"marketfetch/internal/service"
	"marketfetch/internal/testutil"
)

func TestRunOnceCoversEveryKind(t *testing.T) {
	db := testutil.SetupTestDB(t)

	adapter := testutil.NewMockAdapter("primary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "primary"))
	prov := model.Provider{
		ID:             "primary",
		Kinds:          adapter.Kinds,
		CallsPerMinute: 100,
		CallsPerDay:    100,
	}

	fetch := service.NewFetchService(
		quota.NewLimiter(quota.NewStore(db), []model.Provider{prov}, nil),
		map[string]*pool.Pool{"primary": pool.New(prov, []string{"key-1"}, nil)},
		map[string]provider.Adapter{"primary": adapter},
		map[model.DataKind][]string{
			model.KindFundamentals: {"primary"},
			model.KindRatings:      {"primary"},
		},
		repository.NewRecordStore(db),
	)
	batch := service.NewBatchService(fetch, 1, 0)

	sched := New(batch, []string{"AAPL"}, []model.DataKind{model.KindFundamentals, model.KindRatings})
	sched.RunOnce(context.Background())

	// One adapter call per kind for the single ticker.
	if adapter.Calls() != 2 {
		t.Errorf("Expected 2 adapter calls, got %d", adapter.Calls())
	}
	last := batch.LastSummary()
	if last == nil || last.Kind != model.KindRatings {
		t.Errorf("Expected the ratings batch to finish last, got %+v", last)
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	batch := service.NewBatchService(nil, 1, 0)
	sched := New(batch, nil, nil)
	t.Cleanup(sched.Stop)

	if err := sched.Schedule("not a cron spec"); err == nil {
		t.Error("Expected an error for an invalid cron expression")
	}
}
