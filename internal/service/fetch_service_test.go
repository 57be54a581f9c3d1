package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
	"marketfetch/internal/pool"
	"marketfetch/internal/provider"
	"marketfetch/internal/quota"
	"marketfetch/internal/repository"
	"marketfetch/internal/testutil"
)

// newFetchService wires a FetchService over an in-memory database with
// the given mock adapters in priority order. Each provider gets one
// account and generous ceilings unless the test says otherwise.
func newFetchService(t *testing.T, kind model.DataKind, adapters ...*testutil.MockAdapter) *FetchService {
	t.Helper()
	return newFetchServiceLimits(t, kind, 100, adapters...)
}

func newFetchServiceLimits(t *testing.T, kind model.DataKind, callsPerDay int, adapters ...*testutil.MockAdapter) *FetchService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clock := testutil.NewFakeClock(time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC))

	var providers []model.Provider
	pools := map[string]*pool.Pool{}
	adapterMap := map[string]provider.Adapter{}
	var priority []string

	for _, m := range adapters {
		p := model.Provider{
			ID:             m.AdapterName,
			Kinds:          m.Kinds,
			CallsPerMinute: 100,
			CallsPerDay:    callsPerDay,
		}
		providers = append(providers, p)
		pools[p.ID] = pool.New(p, []string{p.ID + "-key"}, clock.Now)
		adapterMap[p.ID] = m
		priority = append(priority, p.ID)
	}

	limiter := quota.NewLimiter(quota.NewStore(db), providers, clock.Now)
	store := repository.NewRecordStore(db)
	return NewFetchService(limiter, pools, adapterMap, map[model.DataKind][]string{kind: priority}, store)
}

func TestFetchFirstProviderWins(t *testing.T) {
	primary := testutil.NewMockAdapter("primary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "primary"))
	secondary := testutil.NewMockAdapter("secondary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "secondary"))

	svc := newFetchService(t, model.KindFundamentals, primary, secondary)

	result := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals)
	if !result.Success {
		t.Fatalf("Expected success, got %q", result.Error)
	}
	if result.Provider != "primary" {
		t.Errorf("Expected primary provider, got %q", result.Provider)
	}
	if secondary.Calls() != 0 {
		t.Errorf("Expected secondary never invoked, got %d calls", secondary.Calls())
	}
}

func TestFetchFallsBackOnEmptyResult(t *testing.T) {
	primary := testutil.NewMockAdapter("primary")
	primary.AlwaysEmpty = true
	secondary := testutil.NewMockAdapter("secondary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "secondary"))

	svc := newFetchService(t, model.KindFundamentals, primary, secondary)

	result := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals)
	if !result.Success {
		t.Fatalf("Expected fallback success, got %q", result.Error)
	}
	if result.Provider != "secondary" {
		t.Errorf("Expected secondary provider, got %q", result.Provider)
	}
	if primary.Calls() != 1 {
		t.Errorf("Expected primary tried once, got %d", primary.Calls())
	}

	// The empty call still spent primary's quota.
	usage, err := svc.Limiter().Usage()
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	spent := map[string]int{}
	for _, q := range usage {
		spent[q.Provider] += q.CallsMade
	}
	if spent["primary"] != 1 {
		t.Errorf("Expected primary debited for the empty call, got %d", spent["primary"])
	}
	if spent["secondary"] != 1 {
		t.Errorf("Expected secondary debited once, got %d", spent["secondary"])
	}
}

func TestFetchQuotaDenialSkipsAdapter(t *testing.T) {
	primary := testutil.NewMockAdapter("primary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "primary"))
	secondary := testutil.NewMockAdapter("secondary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "secondary"))

	// One call per day: the first request drains primary.
	svc := newFetchServiceLimits(t, model.KindFundamentals, 1, primary, secondary)

	first := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals)
	if !first.Success || first.Provider != "primary" {
		t.Fatalf("Expected first fetch from primary, got %+v", first)
	}

	second := svc.Fetch(context.Background(), "MSFT", model.KindFundamentals)
	if second.Success {
		t.Fatal("Expected failure: secondary has no record for MSFT")
	}
	// Primary's adapter was never hit a second time: quota said no
	// before any network call.
	if primary.Calls() != 1 {
		t.Errorf("Expected exactly 1 primary call, got %d", primary.Calls())
	}
	if secondary.Calls() != 1 {
		t.Errorf("Expected secondary tried for MSFT, got %d", secondary.Calls())
	}
}

func TestFetchExhaustedFlag(t *testing.T) {
	primary := testutil.NewMockAdapter("primary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "primary"))

	svc := newFetchServiceLimits(t, model.KindFundamentals, 1, primary)

	if r := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals); !r.Success {
		t.Fatalf("Expected first fetch to succeed, got %q", r.Error)
	}

	// Every provider in the chain failed for quota reasons only.
	r := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals)
	if r.Success {
		t.Fatal("Expected quota-denied failure")
	}
	if !r.Exhausted {
		t.Error("Expected Exhausted when the whole chain was quota-denied")
	}
	if !strings.Contains(r.Error, apperrors.ErrQuotaExhausted.Error()) {
		t.Errorf("Expected quota error, got %q", r.Error)
	}
}

func TestFetchNonQuotaFailureClearsExhausted(t *testing.T) {
	broken := testutil.NewMockAdapter("broken").
		WithError(apperrors.ErrProviderUnavailable)

	svc := newFetchService(t, model.KindFundamentals, broken)

	r := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals)
	if r.Success {
		t.Fatal("Expected failure")
	}
	if r.Exhausted {
		t.Error("A transport failure is not quota exhaustion")
	}
}

func TestFetchNoProvidersForKind(t *testing.T) {
	primary := testutil.NewMockAdapter("primary")
	svc := newFetchService(t, model.KindFundamentals, primary)

	r := svc.Fetch(context.Background(), "AAPL", model.KindPricing)
	if r.Success {
		t.Fatal("Expected failure for unconfigured kind")
	}
	if !strings.Contains(r.Error, apperrors.ErrNoProviders.Error()) {
		t.Errorf("Expected no-providers error, got %q", r.Error)
	}
}

// failingPersister rejects every write.
type failingPersister struct{}

func (failingPersister) Persist(context.Context, *model.NormalizedRecord) error {
	return errors.New("disk full")
}

func TestFetchPersistenceFailureIsTerminal(t *testing.T) {
	primary := testutil.NewMockAdapter("primary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "primary"))
	secondary := testutil.NewMockAdapter("secondary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "secondary"))

	svc := newFetchService(t, model.KindFundamentals, primary, secondary)
	svc.store = failingPersister{}

	r := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals)
	if r.Success {
		t.Fatal("Expected failure when persistence is down")
	}
	// Retrying the same write through another provider would fail the
	// same way; the chain stops immediately.
	if secondary.Calls() != 0 {
		t.Errorf("Expected no fallback after a persistence failure, got %d calls", secondary.Calls())
	}
	if !strings.Contains(r.Error, apperrors.ErrPersistence.Error()) {
		t.Errorf("Expected persistence error, got %q", r.Error)
	}
}

func TestFetchPassesAccountCredential(t *testing.T) {
	primary := testutil.NewMockAdapter("primary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "primary"))

	svc := newFetchService(t, model.KindFundamentals, primary)

	if r := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals); !r.Success {
		t.Fatalf("Expected success, got %q", r.Error)
	}
	keys := primary.APIKeys()
	if len(keys) != 1 || keys[0] != "primary-key" {
		t.Errorf("Expected the pool account's key, got %v", keys)
	}
}

func TestFetchRecordPersisted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := testutil.NewFakeClock(time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC))

	primary := testutil.NewMockAdapter("primary").
		WithRecord("AAPL", testutil.CreateFundamentalsRecord("AAPL", "primary"))
	prov := model.Provider{ID: "primary", Kinds: primary.Kinds, CallsPerMinute: 100, CallsPerDay: 100}

	store := repository.NewRecordStore(db)
	svc := NewFetchService(
		quota.NewLimiter(quota.NewStore(db), []model.Provider{prov}, clock.Now),
		map[string]*pool.Pool{"primary": pool.New(prov, []string{"k"}, clock.Now)},
		map[string]provider.Adapter{"primary": primary},
		map[model.DataKind][]string{model.KindFundamentals: {"primary"}},
		store,
	)

	if r := svc.Fetch(context.Background(), "AAPL", model.KindFundamentals); !r.Success {
		t.Fatalf("Expected success, got %q", r.Error)
	}

	f, found, err := store.Fundamentals().Get(context.Background(), "AAPL")
	if err != nil || !found {
		t.Fatalf("Expected stored fundamentals, found=%v err=%v", found, err)
	}
	if f.Source != "primary" {
		t.Errorf("Unexpected source %q", f.Source)
	}
}
