package yahoo

// ChartResponse represents the raw JSON response structure from the Yahoo
// Finance chart API. Price arrays use pointers because Yahoo emits null
// for days without a bar; those must stay missing, not zero.
type ChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency     string `json:"currency"`
				Symbol       string `json:"symbol"`
				ExchangeName string `json:"exchangeName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// value is Yahoo's formatted-number object. Only the raw figure matters;
// the pre-formatted string is ignored.
type value struct {
	Raw *float64 `json:"raw"`
}

// SummaryResponse represents the raw JSON response structure from the
// Yahoo Finance quoteSummary API for the financialData and
// defaultKeyStatistics modules.
type SummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData struct {
				TotalRevenue      value  `json:"totalRevenue"`
				OperatingCashflow value  `json:"operatingCashflow"`
				FinancialCurrency string `json:"financialCurrency"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				NetIncomeToCommon value `json:"netIncomeToCommon"`
				TrailingEps       value `json:"trailingEps"`
				SharesOutstanding value `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"quoteSummary"`
}
