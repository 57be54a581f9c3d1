package yahoo

import (
	"context"
	"fmt"
	"time"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
	"marketfetch/internal/provider"
)

// baseURL is a var so tests can point the adapter at a local server.
var baseURL = "https://query1.finance.yahoo.com"

// Adapter fetches daily prices from the Yahoo Finance chart API and
// fundamentals from the quoteSummary API. Yahoo is keyless: the account
// credential is ignored.
type Adapter struct {
	client *provider.HTTPClient
	fields provider.FieldMap
}

// New creates a Yahoo adapter. The raw-to-canonical field mapping is
// resolved here, once, not per call.
func New(client *provider.HTTPClient) *Adapter {
	return &Adapter{
		client: client,
		fields: provider.FieldMap{
			"totalRevenue":      provider.FieldRevenue,
			"netIncomeToCommon": provider.FieldNetIncome,
			"trailingEps":       provider.FieldEPS,
			"operatingCashflow": provider.FieldOperatingCashFlow,
			"sharesOutstanding": provider.FieldSharesOutstanding,
			"financialCurrency": provider.FieldCurrency,
		},
	}
}

func (a *Adapter) Name() string { return "yahoo" }

func (a *Adapter) Supports(kind model.DataKind) bool {
	return kind == model.KindPricing || kind == model.KindFundamentals
}

func (a *Adapter) Endpoint(kind model.DataKind) string {
	if kind == model.KindPricing {
		return "chart"
	}
	return "quoteSummary"
}

func (a *Adapter) Fetch(ctx context.Context, ticker string, kind model.DataKind, _ string) (*model.NormalizedRecord, error) {
	switch kind {
	case model.KindPricing:
		return a.fetchPrices(ctx, ticker)
	case model.KindFundamentals:
		return a.fetchFundamentals(ctx, ticker)
	default:
		return nil, fmt.Errorf("%w: yahoo cannot serve %q", apperrors.ErrUnknownDataKind, kind)
	}
}

func (a *Adapter) fetchPrices(ctx context.Context, ticker string) (*model.NormalizedRecord, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", baseURL, ticker)

	var resp ChartResponse
	if err := provider.FetchJSON(ctx, a.client, url, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo: %s", apperrors.ErrEmptyResult, *resp.Chart.Error)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart for %s", apperrors.ErrEmptyResult, ticker)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart for %s", apperrors.ErrEmptyResult, ticker)
	}
	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return nil, fmt.Errorf("%w: yahoo chart for %s: mismatched data lengths", apperrors.ErrProviderUnavailable, ticker)
	}

	prices := make([]model.DailyPrice, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		p := model.DailyPrice{
			Ticker: ticker,
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close:  quote.Close[i],
			Source: a.Name(),
		}
		if i < len(quote.Open) {
			p.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			p.High = quote.High[i]
		}
		if i < len(quote.Low) {
			p.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			p.Volume = quote.Volume[i]
		}
		if p.Close == nil {
			continue // non-trading day placeholder
		}
		prices = append(prices, p)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart for %s", apperrors.ErrEmptyResult, ticker)
	}

	return &model.NormalizedRecord{Ticker: ticker, Kind: model.KindPricing, Prices: prices}, nil
}

func (a *Adapter) fetchFundamentals(ctx context.Context, ticker string) (*model.NormalizedRecord, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=financialData,defaultKeyStatistics", baseURL, ticker)

	var resp SummaryResponse
	if err := provider.FetchJSON(ctx, a.client, url, nil, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("%w: yahoo: %s", apperrors.ErrEmptyResult, *resp.QuoteSummary.Error)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo quoteSummary for %s", apperrors.ErrEmptyResult, ticker)
	}

	result := resp.QuoteSummary.Result[0]
	raw := map[string]any{}
	put := func(name string, v value) {
		if v.Raw != nil {
			raw[name] = *v.Raw
		}
	}
	put("totalRevenue", result.FinancialData.TotalRevenue)
	put("operatingCashflow", result.FinancialData.OperatingCashflow)
	put("netIncomeToCommon", result.DefaultKeyStatistics.NetIncomeToCommon)
	put("trailingEps", result.DefaultKeyStatistics.TrailingEps)
	put("sharesOutstanding", result.DefaultKeyStatistics.SharesOutstanding)
	if result.FinancialData.FinancialCurrency != "" {
		raw["financialCurrency"] = result.FinancialData.FinancialCurrency
	}

	f := provider.MapFundamentals(ticker, a.Name(), raw, a.fields, time.Now().UTC())
	if f == nil {
		return nil, fmt.Errorf("%w: yahoo quoteSummary for %s", apperrors.ErrEmptyResult, ticker)
	}

	return &model.NormalizedRecord{Ticker: ticker, Kind: model.KindFundamentals, Fundamentals: f}, nil
}
