package apperrors

import "errors"

// Quota and account errors represent exhausted call budgets.
// These errors are recoverable: the orchestrator advances to the next
// provider in the priority list when it sees them.
var (
	// ErrQuotaExhausted indicates the provider/endpoint quota row has
	// reached its call ceiling for today.
	ErrQuotaExhausted = errors.New("provider daily quota exhausted")

	// ErrAccountsExhausted indicates every account in a provider's pool has
	// reached its daily call ceiling.
	ErrAccountsExhausted = errors.New("all accounts exhausted for provider")
)

// Provider attempt errors represent failures scoped to a single provider
// attempt. They fail the attempt, never the batch.
var (
	// ErrEmptyResult indicates the provider responded but has no data for
	// this ticker and data kind. Not a fault; the next provider is tried.
	ErrEmptyResult = errors.New("provider returned no data")

	// ErrProviderUnavailable indicates a transport-level failure (timeout,
	// 5xx, throttle response, malformed body) after bounded retries.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ErrPersistence indicates a record fetched successfully but could not be
// written. It is terminal for the ticker: a provider response that was
// never stored must not be reported as success, and trying further
// providers cannot fix storage.
var ErrPersistence = errors.New("failed to persist record")

// Request and configuration errors.
var (
	// ErrUnknownProvider indicates a provider name that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownDataKind indicates a data kind outside fundamentals/pricing/ratings.
	ErrUnknownDataKind = errors.New("unknown data kind")

	// ErrNoProviders indicates the priority list for a data kind is empty.
	ErrNoProviders = errors.New("no providers configured for data kind")

	// ErrNoCredentials indicates that no enabled provider has a usable
	// credential. Fatal at startup.
	ErrNoCredentials = errors.New("no credentials configured for any provider")

	// ErrAllProvidersFailed indicates every provider in the priority list was
	// tried (or denied by quota) without yielding a persisted record.
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrSealedCredential indicates a sealed credential was supplied without
	// a secrets key to open it.
	ErrSealedCredential = errors.New("sealed credential but no secrets key configured")
)
