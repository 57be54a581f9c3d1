package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
	"marketfetch/internal/provider"
)

// baseURL is a var so tests can point the adapter at a local server.
var baseURL = "https://finnhub.io/api/v1"

// Adapter fetches basic financials and analyst recommendation trends from
// Finnhub. The credential travels as the token query parameter, per
// Finnhub's convention.
type Adapter struct {
	client *provider.HTTPClient
	fields provider.FieldMap
}

// New creates a Finnhub adapter with its field mapping table resolved up
// front. Finnhub reports TTM monetary metrics in millions; those fields
// are scaled to units during mapping.
func New(client *provider.HTTPClient) *Adapter {
	return &Adapter{
		client: client,
		fields: provider.FieldMap{
			"revenueTTM":       provider.FieldRevenue,
			"netIncomeTTM":     provider.FieldNetIncome,
			"epsTTM":           provider.FieldEPS,
			"totalAssets":      provider.FieldTotalAssets,
			"totalLiabilities": provider.FieldTotalLiabilities,
			"totalEquity":      provider.FieldShareholderEquity,
			"cashFlowTTM":      provider.FieldOperatingCashFlow,
		},
	}
}

// millionScaled lists raw Finnhub fields reported in millions.
var millionScaled = map[string]bool{
	"revenueTTM":       true,
	"netIncomeTTM":     true,
	"totalAssets":      true,
	"totalLiabilities": true,
	"totalEquity":      true,
	"cashFlowTTM":      true,
}

// metricResponse represents the raw stock/metric payload. Metric values
// arrive untyped; the mapping table sorts them out.
type metricResponse struct {
	Metric map[string]any `json:"metric"`
}

// recommendation represents one entry of the stock/recommendation payload.
type recommendation struct {
	Symbol     string `json:"symbol"`
	Period     string `json:"period"`
	StrongBuy  *int   `json:"strongBuy"`
	Buy        *int   `json:"buy"`
	Hold       *int   `json:"hold"`
	Sell       *int   `json:"sell"`
	StrongSell *int   `json:"strongSell"`
}

func (a *Adapter) Name() string { return "finnhub" }

func (a *Adapter) Supports(kind model.DataKind) bool {
	return kind == model.KindFundamentals || kind == model.KindRatings
}

func (a *Adapter) Endpoint(kind model.DataKind) string {
	if kind == model.KindRatings {
		return "recommendation"
	}
	return "metric"
}

func (a *Adapter) Fetch(ctx context.Context, ticker string, kind model.DataKind, apiKey string) (*model.NormalizedRecord, error) {
	switch kind {
	case model.KindFundamentals:
		return a.fetchFundamentals(ctx, ticker, apiKey)
	case model.KindRatings:
		return a.fetchRatings(ctx, ticker, apiKey)
	default:
		return nil, fmt.Errorf("%w: finnhub cannot serve %q", apperrors.ErrUnknownDataKind, kind)
	}
}

func (a *Adapter) fetchFundamentals(ctx context.Context, ticker, apiKey string) (*model.NormalizedRecord, error) {
	endpoint := fmt.Sprintf("%s/stock/metric?symbol=%s&metric=all&token=%s",
		baseURL, url.QueryEscape(ticker), url.QueryEscape(apiKey))

	var resp metricResponse
	if err := provider.FetchJSON(ctx, a.client, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Metric) == 0 {
		return nil, fmt.Errorf("%w: finnhub metrics for %s", apperrors.ErrEmptyResult, ticker)
	}

	// Convert million-denominated fields to units before mapping.
	for name := range millionScaled {
		if v := provider.ParseNumber(resp.Metric[name]); v != nil {
			resp.Metric[name] = *v * 1e6
		}
	}

	f := provider.MapFundamentals(ticker, a.Name(), resp.Metric, a.fields, time.Now().UTC())
	if f == nil {
		return nil, fmt.Errorf("%w: finnhub metrics for %s", apperrors.ErrEmptyResult, ticker)
	}

	return &model.NormalizedRecord{Ticker: ticker, Kind: model.KindFundamentals, Fundamentals: f}, nil
}

func (a *Adapter) fetchRatings(ctx context.Context, ticker, apiKey string) (*model.NormalizedRecord, error) {
	endpoint := fmt.Sprintf("%s/stock/recommendation?symbol=%s&token=%s",
		baseURL, url.QueryEscape(ticker), url.QueryEscape(apiKey))

	var resp []recommendation
	if err := provider.FetchJSON(ctx, a.client, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: finnhub recommendations for %s", apperrors.ErrEmptyResult, ticker)
	}

	// Finnhub returns newest period first.
	latest := resp[0]
	rating := &model.AnalystRating{
		Ticker:     ticker,
		Period:     latest.Period,
		StrongBuy:  latest.StrongBuy,
		Buy:        latest.Buy,
		Hold:       latest.Hold,
		Sell:       latest.Sell,
		StrongSell: latest.StrongSell,
		Source:     a.Name(),
	}

	return &model.NormalizedRecord{Ticker: ticker, Kind: model.KindRatings, Rating: rating}, nil
}
