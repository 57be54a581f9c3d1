package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
	"marketfetch/internal/provider"
)

// baseURL is a var so tests can point the adapter at a local server.
var baseURL = "https://www.alphavantage.co/query"

// Adapter fetches daily prices (TIME_SERIES_DAILY) and company overview
// fundamentals (OVERVIEW) from Alpha Vantage. The credential travels as
// the apikey query parameter.
//
// Alpha Vantage answers throttled calls with HTTP 200 and a "Note" or
// "Information" body instead of an error status; the adapter detects
// those and reports them as provider unavailability so the orchestrator
// moves on rather than persisting garbage.
type Adapter struct {
	client *provider.HTTPClient
	fields provider.FieldMap
}

// New creates an Alpha Vantage adapter with its field mapping resolved at
// construction. OVERVIEW delivers every number as a string, with "None"
// and "-" standing in for missing values; the shared numeric parsing
// turns those into nils rather than zeros.
func New(client *provider.HTTPClient) *Adapter {
	return &Adapter{
		client: client,
		fields: provider.FieldMap{
			"RevenueTTM":           provider.FieldRevenue,
			"EPS":                  provider.FieldEPS,
			"SharesOutstanding":    provider.FieldSharesOutstanding,
			"OperatingCashflowTTM": provider.FieldOperatingCashFlow,
			"Currency":             provider.FieldCurrency,
		},
	}
}

// throttleNote is present in the body when the per-minute or per-day
// ceiling was hit server-side.
type throttleNote struct {
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

func (a *Adapter) Name() string { return "alphavantage" }

func (a *Adapter) Supports(kind model.DataKind) bool {
	return kind == model.KindPricing || kind == model.KindFundamentals
}

func (a *Adapter) Endpoint(kind model.DataKind) string {
	if kind == model.KindPricing {
		return "TIME_SERIES_DAILY"
	}
	return "OVERVIEW"
}

func (a *Adapter) Fetch(ctx context.Context, ticker string, kind model.DataKind, apiKey string) (*model.NormalizedRecord, error) {
	switch kind {
	case model.KindPricing:
		return a.fetchPrices(ctx, ticker, apiKey)
	case model.KindFundamentals:
		return a.fetchFundamentals(ctx, ticker, apiKey)
	default:
		return nil, fmt.Errorf("%w: alphavantage cannot serve %q", apperrors.ErrUnknownDataKind, kind)
	}
}

func (a *Adapter) fetchPrices(ctx context.Context, ticker, apiKey string) (*model.NormalizedRecord, error) {
	endpoint := fmt.Sprintf("%s?function=TIME_SERIES_DAILY&symbol=%s&outputsize=compact&apikey=%s",
		baseURL, url.QueryEscape(ticker), url.QueryEscape(apiKey))

	var resp struct {
		throttleNote
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := provider.FetchJSON(ctx, a.client, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if err := a.checkThrottle(resp.throttleNote); err != nil {
		return nil, err
	}
	if len(resp.Series) == 0 {
		return nil, fmt.Errorf("%w: alphavantage daily series for %s", apperrors.ErrEmptyResult, ticker)
	}

	dates := make([]string, 0, len(resp.Series))
	for d := range resp.Series {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	prices := make([]model.DailyPrice, 0, len(dates))
	for _, d := range dates {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		bar := resp.Series[d]
		p := model.DailyPrice{
			Ticker: ticker,
			Date:   date.UTC(),
			Open:   provider.ParseNumber(bar["1. open"]),
			High:   provider.ParseNumber(bar["2. high"]),
			Low:    provider.ParseNumber(bar["3. low"]),
			Close:  provider.ParseNumber(bar["4. close"]),
			Volume: provider.ParseInt(bar["5. volume"]),
			Source: a.Name(),
		}
		if p.Close == nil {
			continue
		}
		prices = append(prices, p)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: alphavantage daily series for %s", apperrors.ErrEmptyResult, ticker)
	}

	return &model.NormalizedRecord{Ticker: ticker, Kind: model.KindPricing, Prices: prices}, nil
}

func (a *Adapter) fetchFundamentals(ctx context.Context, ticker, apiKey string) (*model.NormalizedRecord, error) {
	endpoint := fmt.Sprintf("%s?function=OVERVIEW&symbol=%s&apikey=%s",
		baseURL, url.QueryEscape(ticker), url.QueryEscape(apiKey))

	var raw map[string]any
	if err := provider.FetchJSON(ctx, a.client, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	if note := noteFrom(raw); note != "" {
		return nil, fmt.Errorf("%w: alphavantage throttled: %s", apperrors.ErrProviderUnavailable, note)
	}
	// OVERVIEW returns {} for unknown symbols.
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: alphavantage overview for %s", apperrors.ErrEmptyResult, ticker)
	}

	f := provider.MapFundamentals(ticker, a.Name(), raw, a.fields, time.Now().UTC())
	if f == nil {
		return nil, fmt.Errorf("%w: alphavantage overview for %s", apperrors.ErrEmptyResult, ticker)
	}

	return &model.NormalizedRecord{Ticker: ticker, Kind: model.KindFundamentals, Fundamentals: f}, nil
}

func (a *Adapter) checkThrottle(n throttleNote) error {
	if n.Note != "" || n.Information != "" {
		msg := n.Note
		if msg == "" {
			msg = n.Information
		}
		return fmt.Errorf("%w: alphavantage throttled: %s", apperrors.ErrProviderUnavailable, msg)
	}
	return nil
}

func noteFrom(raw map[string]any) string {
	for _, key := range []string{"Note", "Information"} {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
