package provider

import (
	"context"

	"marketfetch/internal/model"
)

// Adapter is the contract every concrete provider implements. Fetch
// issues the outbound call for one ticker and data kind and maps the
// provider's response into the common record shape.
//
// Outcomes:
//   - a non-empty NormalizedRecord on success;
//   - apperrors.ErrEmptyResult when the provider has no data for the
//     ticker/kind; the orchestrator treats this as a signal to try
//     the next provider;
//   - an error wrapping apperrors.ErrProviderUnavailable for transport
//     failures (timeout, 5xx, throttle body, malformed JSON) after the
//     adapter's own bounded retries.
//
// The account credential is passed per call because account rotation may
// hand the same adapter a different key on every request.
type Adapter interface {
	Name() string
	Supports(kind model.DataKind) bool
	// Endpoint returns the quota-accounting label for a data kind, so
	// per-endpoint ceilings stay separable in the quota store.
	Endpoint(kind model.DataKind) string
	Fetch(ctx context.Context, ticker string, kind model.DataKind, apiKey string) (*model.NormalizedRecord, error)
}
