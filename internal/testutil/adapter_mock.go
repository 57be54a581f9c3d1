package testutil

import (
	"context"
	"sync"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
)

// MockAdapter is a configurable stand-in for a provider adapter. It
// returns predefined records or errors instead of making HTTP calls and
// counts invocations so tests can assert on quota spending.
type MockAdapter struct {
	// AdapterName is reported by Name(). Defaults look like a provider.
	AdapterName string
	// Kinds lists the data kinds the mock claims to support.
	Kinds []model.DataKind

	// Records maps ticker to the record to return. Tickers absent from
	// the map yield apperrors.ErrEmptyResult.
	Records map[string]*model.NormalizedRecord
	// Err, when set, is returned for every call instead of a record.
	Err error
	// AlwaysEmpty forces apperrors.ErrEmptyResult for every call.
	AlwaysEmpty bool

	mu    sync.Mutex
	calls int
	// LastAPIKeys records the credential passed on each call, in order.
	keys []string
}

// NewMockAdapter creates a mock supporting all three data kinds.
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{
		AdapterName: name,
		Kinds:       []model.DataKind{model.KindFundamentals, model.KindPricing, model.KindRatings},
		Records:     map[string]*model.NormalizedRecord{},
	}
}

func (m *MockAdapter) Name() string { return m.AdapterName }

func (m *MockAdapter) Supports(kind model.DataKind) bool {
	for _, k := range m.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (m *MockAdapter) Endpoint(kind model.DataKind) string {
	return string(kind)
}

func (m *MockAdapter) Fetch(_ context.Context, ticker string, kind model.DataKind, apiKey string) (*model.NormalizedRecord, error) {
	m.mu.Lock()
	m.calls++
	m.keys = append(m.keys, apiKey)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.AlwaysEmpty {
		return nil, apperrors.ErrEmptyResult
	}
	rec, ok := m.Records[ticker]
	if !ok {
		return nil, apperrors.ErrEmptyResult
	}
	return rec, nil
}

// Calls returns how many times Fetch was invoked.
func (m *MockAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// APIKeys returns the credentials passed to Fetch, in call order.
func (m *MockAdapter) APIKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

// WithRecord registers a record for a ticker and returns the mock.
func (m *MockAdapter) WithRecord(ticker string, rec *model.NormalizedRecord) *MockAdapter {
	m.Records[ticker] = rec
	return m
}

// WithError configures the mock to fail every call.
func (m *MockAdapter) WithError(err error) *MockAdapter {
	m.Err = err
	return m
}
