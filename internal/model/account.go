package model

import "time"

// Account is one credential for a provider, carrying its own quota
// counters. Counters are mutated continuously under the owning pool's
// mutex; callers outside the pool only ever see copies.
type Account struct {
	ID         string `json:"id"`
	ProviderID string `json:"providerId"`
	APIKey     string `json:"-"`

	DailyCalls int       `json:"dailyCalls"`
	LastReset  time.Time `json:"lastReset"` // date of the last daily counter reset

	MinuteCalls int       `json:"minuteCalls"`
	WindowStart time.Time `json:"windowStart"` // start of the current 60s window
	LastCall    time.Time `json:"lastCall"`
}

// Remaining returns how many daily calls the account has left given the
// provider's per-day ceiling.
func (a Account) Remaining(callsPerDay int) int {
	return callsPerDay - a.DailyCalls
}
