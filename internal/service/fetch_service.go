package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
	"marketfetch/internal/pool"
	"marketfetch/internal/provider"
	"marketfetch/internal/quota"
)

// Persister is the storage side of the orchestrator: one upsert per
// normalized record, with coalesce-on-NULL semantics behind it.
type Persister interface {
	Persist(ctx context.Context, rec *model.NormalizedRecord) error
}

// FetchService runs the fallback chain for one (ticker, data kind)
// request: walk the kind's provider priority list, ask the rate limiter
// and account pool for permission, invoke the adapter, and stop at the
// first provider whose data persists. Provider attempts within a request
// are strictly sequential; the chain never spends quota on providers it
// does not reach.
type FetchService struct {
	limiter  *quota.Limiter
	pools    map[string]*pool.Pool
	adapters map[string]provider.Adapter
	priority map[model.DataKind][]string
	store    Persister
}

// NewFetchService creates a new FetchService.
func NewFetchService(
	limiter *quota.Limiter,
	pools map[string]*pool.Pool,
	adapters map[string]provider.Adapter,
	priority map[model.DataKind][]string,
	store Persister,
) *FetchService {
	return &FetchService{
		limiter:  limiter,
		pools:    pools,
		adapters: adapters,
		priority: priority,
		store:    store,
	}
}

// SetUniverse recomputes every pool's sticky ticker allocation for a new
// batch universe.
func (s *FetchService) SetUniverse(tickers []string) {
	for _, p := range s.pools {
		p.SetUniverse(tickers)
	}
}

// Pools returns the account pools keyed by provider ID.
func (s *FetchService) Pools() map[string]*pool.Pool {
	return s.pools
}

// Limiter returns the durable rate limiter.
func (s *FetchService) Limiter() *quota.Limiter {
	return s.limiter
}

// Fetch runs the full fallback chain for one request and reports the
// outcome. Failures are recorded on the result, never raised: one
// ticker's failure must not abort a batch.
func (s *FetchService) Fetch(ctx context.Context, ticker string, kind model.DataKind) model.FetchResult {
	start := time.Now()
	result := model.FetchResult{
		Ticker:    ticker,
		Kind:      kind,
		Timestamp: start.UTC(),
		Exhausted: true,
	}

	providers := s.priority[kind]
	if len(providers) == 0 {
		result.Exhausted = false
		result.Error = apperrors.ErrNoProviders.Error()
		result.Elapsed = time.Since(start)
		return result
	}

	var lastErr error
	for _, providerID := range providers {
		err := s.tryProvider(ctx, ticker, kind, providerID)
		if err == nil {
			result.Success = true
			result.Provider = providerID
			result.Exhausted = false
			break
		}

		lastErr = err
		if !errors.Is(err, apperrors.ErrQuotaExhausted) && !errors.Is(err, apperrors.ErrAccountsExhausted) {
			result.Exhausted = false
		}
		if errors.Is(err, apperrors.ErrPersistence) || ctx.Err() != nil {
			break
		}
	}

	if !result.Success {
		if lastErr == nil {
			lastErr = apperrors.ErrAllProvidersFailed
		}
		result.Error = lastErr.Error()
	}
	result.Elapsed = time.Since(start)
	return result
}

// tryProvider runs one provider attempt: quota check, account selection,
// per-minute backpressure, the adapter call, quota accounting and
// persistence. Quota denial returns before the adapter is ever invoked.
func (s *FetchService) tryProvider(ctx context.Context, ticker string, kind model.DataKind, providerID string) error {
	adapter, ok := s.adapters[providerID]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownProvider, providerID)
	}
	if !adapter.Supports(kind) {
		return fmt.Errorf("%w: %s cannot serve %s", apperrors.ErrUnknownDataKind, providerID, kind)
	}
	accounts, ok := s.pools[providerID]
	if !ok {
		return fmt.Errorf("%w: no account pool for %q", apperrors.ErrUnknownProvider, providerID)
	}

	endpoint := adapter.Endpoint(kind)
	allowed, err := s.limiter.CheckLimit(providerID, endpoint)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%s/%s: %w", providerID, endpoint, apperrors.ErrQuotaExhausted)
	}

	account, err := accounts.GetAccount(ticker)
	if err != nil {
		return err
	}

	// Book the per-minute slot; when the window is full the pool hands
	// back the remaining wait and this worker blocks here. This is the
	// one deliberate backpressure point in the system.
	for {
		wait, err := accounts.RecordCall(account.ID)
		if err != nil {
			return err
		}
		if wait == 0 {
			break
		}
		if err := sleepContext(ctx, wait); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
		}
	}

	rec, fetchErr := adapter.Fetch(ctx, ticker, kind, account.APIKey)

	// The call consumed quota whether or not it yielded data.
	if err := s.limiter.RecordCall(providerID, endpoint); err != nil {
		log.Printf("Warning: failed to record %s/%s call: %v", providerID, endpoint, err)
	}

	if fetchErr != nil {
		return fetchErr
	}
	if rec.Empty() {
		return fmt.Errorf("%s: %w", providerID, apperrors.ErrEmptyResult)
	}

	if err := s.store.Persist(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

// sleepContext blocks for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
