package pool

import (
	"fmt"
	"sync"
	"time"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
)

// Pool holds the accounts of one provider and decides which account
// serves a given ticker. Spreading calls across several credentials
// multiplies the provider's effective daily and per-minute throughput.
//
// All account counters are guarded by a single mutex per pool; every
// read-modify-write runs inside it, so concurrent workers that land on
// the same account never lose updates. Contention is negligible at the
// tens-of-calls-per-second this system is rate-limited to anyway.
type Pool struct {
	provider model.Provider

	mu       sync.Mutex
	accounts []*model.Account
	alloc    Allocation
	now      func() time.Time
}

// New creates a pool with one account per API key. A nil now falls back
// to time.Now.
func New(provider model.Provider, apiKeys []string, now func() time.Time) *Pool {
	if now == nil {
		now = time.Now
	}
	p := &Pool{
		provider: provider,
		alloc:    Allocation{},
		now:      now,
	}
	for i, key := range apiKeys {
		p.accounts = append(p.accounts, &model.Account{
			ID:         fmt.Sprintf("%s-%d", provider.ID, i+1),
			ProviderID: provider.ID,
			APIKey:     key,
			LastReset:  now().UTC(),
		})
	}
	return p
}

// Provider returns the pool's immutable provider configuration.
func (p *Pool) Provider() model.Provider {
	return p.provider
}

// SetUniverse recomputes the sticky ticker allocation for a batch
// universe. Tickers outside the universe still get served, through the
// load-balancing fallback instead of a sticky account.
func (p *Pool) SetUniverse(tickers []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alloc = Allocate(tickers, len(p.accounts))
}

// GetAccount selects the account that should serve the given ticker:
// the ticker's sticky account when it still has daily budget, otherwise
// the candidate account with the most remaining daily calls. Returns
// ErrAccountsExhausted when every account has hit its daily ceiling,
// which is terminal for the current request only.
func (p *Pool) GetAccount(ticker string) (model.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	today := p.today()
	for _, a := range p.accounts {
		p.resetIfStale(a, today)
	}

	var candidates []*model.Account
	for _, a := range p.accounts {
		if a.DailyCalls < p.provider.CallsPerDay {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return model.Account{}, fmt.Errorf("%s: %w", p.provider.ID, apperrors.ErrAccountsExhausted)
	}

	if idx, ok := p.alloc[ticker]; ok && idx < len(p.accounts) {
		sticky := p.accounts[idx]
		if sticky.DailyCalls < p.provider.CallsPerDay {
			return *sticky, nil
		}
	}

	best := candidates[0]
	for _, a := range candidates[1:] {
		if a.Remaining(p.provider.CallsPerDay) > best.Remaining(p.provider.CallsPerDay) {
			best = a
		}
	}
	return *best, nil
}

// RecordCall books one call against the account. When the account's 60s
// window is already full it does not increment; instead it returns the
// time remaining until the window reopens, so the caller decides whether
// to block or bail out. The pool never sleeps internally. A zero wait
// means the call was booked.
func (p *Pool) RecordCall(accountID string) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a := p.byID(accountID)
	if a == nil {
		return 0, fmt.Errorf("unknown account %q", accountID)
	}

	now := p.now()
	p.resetIfStale(a, p.today())

	if now.Sub(a.WindowStart) > time.Minute {
		a.MinuteCalls = 0
		a.WindowStart = now
	}

	if a.MinuteCalls >= p.provider.CallsPerMinute {
		wait := a.WindowStart.Add(time.Minute).Sub(now)
		if wait < 0 {
			wait = 0
		}
		return wait, nil
	}

	a.MinuteCalls++
	a.DailyCalls++
	a.LastCall = now
	return 0, nil
}

// Usage returns a snapshot of every account's counters.
func (p *Pool) Usage() []model.Account {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.Account, 0, len(p.accounts))
	for _, a := range p.accounts {
		snapshot := *a
		snapshot.APIKey = ""
		out = append(out, snapshot)
	}
	return out
}

// resetIfStale zeroes the daily counter and per-minute window when the
// wall-clock date has rolled over since the last reset. Must run under
// the pool mutex.
func (p *Pool) resetIfStale(a *model.Account, today time.Time) {
	if a.LastReset.Year() == today.Year() && a.LastReset.YearDay() == today.YearDay() {
		return
	}
	a.DailyCalls = 0
	a.MinuteCalls = 0
	a.WindowStart = time.Time{}
	a.LastReset = today
}

func (p *Pool) byID(id string) *model.Account {
	for _, a := range p.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (p *Pool) today() time.Time {
	return p.now().UTC()
}
