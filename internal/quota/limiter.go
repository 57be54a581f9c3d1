package quota

import (
	"fmt"
	"time"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
)

// Limiter answers "may I call this provider/endpoint now?" against the
// durable quota store and records calls after they happen.
//
// The check is advisory, not transactional: callers check, perform the
// HTTP call, then record. Under concurrent use this allows brief
// over-quota bursts bounded by the number of in-flight calls, which is
// accepted; the store-level increment itself is atomic, so counts stay
// exact.
type Limiter struct {
	store  *Store
	limits map[string]int // provider ID -> daily call ceiling
	now    func() time.Time
}

// NewLimiter creates a Limiter over the given store. Each provider's
// CallsPerDay here is the pool-wide daily ceiling: callers with several
// accounts per provider pass the per-account ceiling multiplied by the
// account count. A nil now falls back to time.Now.
func NewLimiter(store *Store, providers []model.Provider, now func() time.Time) *Limiter {
	limits := make(map[string]int, len(providers))
	for _, p := range providers {
		limits[p.ID] = p.CallsPerDay
	}
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, limits: limits, now: now}
}

// CheckLimit reports whether the provider/endpoint still has budget for
// today, auto-creating a zero row on first use.
func (l *Limiter) CheckLimit(provider, endpoint string) (bool, error) {
	limit, ok := l.limits[provider]
	if !ok {
		return false, fmt.Errorf("%w: %q", apperrors.ErrUnknownProvider, provider)
	}

	q, err := l.store.Ensure(provider, endpoint, l.today(), limit)
	if err != nil {
		return false, err
	}

	return !q.Exhausted(), nil
}

// RecordCall increments today's counter for the provider/endpoint,
// creating the row if absent. Safe to retry on transient storage errors;
// a retry after a reported failure counts at least once, never silently
// zero times.
func (l *Limiter) RecordCall(provider, endpoint string) error {
	limit, ok := l.limits[provider]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownProvider, provider)
	}

	return l.store.Increment(provider, endpoint, l.today(), limit)
}

// Usage returns today's quota rows across all providers.
func (l *Limiter) Usage() ([]model.QuotaRecord, error) {
	return l.store.Usage(l.today())
}

func (l *Limiter) today() string {
	return l.now().UTC().Format("2006-01-02")
}
