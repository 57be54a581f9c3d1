package model

import "time"

// FetchResult is the per-request outcome of the fallback chain. It is
// transient: produced for every (ticker, kind) request and aggregated
// into the batch summary, never persisted on its own.
type FetchResult struct {
	Ticker    string        `json:"ticker"`
	Kind      DataKind      `json:"kind"`
	Success   bool          `json:"success"`
	Provider  string        `json:"provider,omitempty"` // winning provider, empty if all failed
	Error     string        `json:"error,omitempty"`
	Exhausted bool          `json:"exhausted"` // every denial was quota exhaustion
	Elapsed   time.Duration `json:"elapsed"`
	Timestamp time.Time     `json:"timestamp"`
}

// BatchSummary aggregates the outcome of one batch run.
type BatchSummary struct {
	ID         string         `json:"id"`
	Kind       DataKind       `json:"kind"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Total      int            `json:"total"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	ByProvider map[string]int `json:"byProvider"` // successes per winning provider
	// Systemic is true when every ticker failed and every failure was pure
	// quota exhaustion: the run hit capacity, not bad data.
	Systemic bool          `json:"systemic"`
	Failures []FetchResult `json:"failures,omitempty"`
}
