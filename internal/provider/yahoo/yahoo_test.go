package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
	"marketfetch/internal/provider"
)

const chartBody = `{
	"chart": {
		"result": [{
			"meta": {"currency": "USD", "symbol": "AAPL"},
			"timestamp": [1754006400, 1754092800, 1754179200],
			"indicators": {
				"quote": [{
					"open":   [229.0, null, 231.5],
					"high":   [231.0, null, 233.0],
					"low":    [228.0, null, 230.0],
					"close":  [230.5, null, 232.1],
					"volume": [41000000, null, 39000000]
				}]
			}
		}],
		"error": null
	}
}`

const summaryBody = `{
	"quoteSummary": {
		"result": [{
			"financialData": {
				"totalRevenue": {"raw": 383285000000, "fmt": "383.29B"},
				"operatingCashflow": {"raw": 110543000000, "fmt": "110.54B"},
				"financialCurrency": "USD"
			},
			"defaultKeyStatistics": {
				"netIncomeToCommon": {"raw": 96995000000, "fmt": "97B"},
				"trailingEps": {"raw": 6.13, "fmt": "6.13"},
				"sharesOutstanding": {"raw": 15550060000, "fmt": "15.55B"}
			}
		}],
		"error": null
	}
}`

func withServer(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	orig := baseURL
	baseURL = server.URL
	t.Cleanup(func() {
		baseURL = orig
		server.Close()
	})
	return New(provider.NewHTTPClient(5 * time.Second))
}

func TestFetchPrices(t *testing.T) {
	adapter := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(chartBody))
	})

	rec, err := adapter.Fetch(context.Background(), "AAPL", model.KindPricing, "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if rec.Kind != model.KindPricing {
		t.Errorf("Unexpected kind %s", rec.Kind)
	}
	// The null middle bar is a non-trading placeholder and is dropped.
	if len(rec.Prices) != 2 {
		t.Fatalf("Expected 2 bars, got %d", len(rec.Prices))
	}
	first := rec.Prices[0]
	if first.Close == nil || *first.Close != 230.5 {
		t.Errorf("Unexpected close: %v", first.Close)
	}
	if first.Volume == nil || *first.Volume != 41000000 {
		t.Errorf("Unexpected volume: %v", first.Volume)
	}
	if first.Source != "yahoo" {
		t.Errorf("Unexpected source %q", first.Source)
	}
	if !first.Date.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date %v", first.Date)
	}
}

func TestFetchFundamentals(t *testing.T) {
	adapter := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v10/finance/quoteSummary/AAPL" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(summaryBody))
	})

	rec, err := adapter.Fetch(context.Background(), "AAPL", model.KindFundamentals, "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	f := rec.Fundamentals
	if f == nil {
		t.Fatal("Expected fundamentals")
	}
	if f.Revenue == nil || *f.Revenue != 383285000000 {
		t.Errorf("Unexpected revenue: %v", f.Revenue)
	}
	if f.NetIncome == nil || *f.NetIncome != 96995000000 {
		t.Errorf("Unexpected net income: %v", f.NetIncome)
	}
	if f.EPS == nil || *f.EPS != 6.13 {
		t.Errorf("Unexpected EPS: %v", f.EPS)
	}
	if f.Currency != "USD" {
		t.Errorf("Unexpected currency %q", f.Currency)
	}
	if f.TotalAssets != nil {
		t.Errorf("Expected unreported field to stay nil, got %v", *f.TotalAssets)
	}
}

func TestUnknownSymbol(t *testing.T) {
	adapter := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": [], "error": "No data found, symbol may be delisted"}}`))
	})

	_, err := adapter.Fetch(context.Background(), "NOSUCH", model.KindPricing, "")
	if !errors.Is(err, apperrors.ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, got %v", err)
	}
}

func TestUnsupportedKind(t *testing.T) {
	adapter := New(provider.NewHTTPClient(time.Second))

	if adapter.Supports(model.KindRatings) {
		t.Error("Yahoo must not claim ratings support")
	}
	_, err := adapter.Fetch(context.Background(), "AAPL", model.KindRatings, "")
	if !errors.Is(err, apperrors.ErrUnknownDataKind) {
		t.Errorf("Expected ErrUnknownDataKind, got %v", err)
	}
}
