package provider

import (
	"time"

	"marketfetch/internal/model"
)

// Canonical fundamentals field names. Each adapter declares a mapping
// table from its own raw field names to these at construction time, so
// per-call code never guesses at provider schemas.
const (
	FieldRevenue           = "revenue"
	FieldNetIncome         = "net_income"
	FieldEPS               = "eps"
	FieldTotalAssets       = "total_assets"
	FieldTotalLiabilities  = "total_liabilities"
	FieldShareholderEquity = "shareholder_equity"
	FieldOperatingCashFlow = "operating_cash_flow"
	FieldSharesOutstanding = "shares_outstanding"
	FieldCurrency          = "currency"
)

// FieldMap maps a provider's raw field names to canonical names.
// e.g. "netIncome", "net_income" and "NetIncomeTTM" all map to
// FieldNetIncome in their respective providers.
type FieldMap map[string]string

// MapFundamentals applies a field mapping table to a raw provider object
// and builds the normalized fundamentals record. Raw fields absent from
// the table are ignored; mapped fields with missing values stay nil.
// Returns nil when not a single mapped numeric field was present.
func MapFundamentals(ticker, source string, raw map[string]any, fields FieldMap, asOf time.Time) *model.Fundamentals {
	f := &model.Fundamentals{
		Ticker: ticker,
		Source: source,
		AsOf:   asOf,
	}

	populated := false
	for rawName, canonical := range fields {
		v, ok := raw[rawName]
		if !ok {
			continue
		}
		if canonical == FieldCurrency {
			if s, isStr := v.(string); isStr && s != "" {
				f.Currency = s
			}
			continue
		}
		n := ParseNumber(v)
		if n == nil {
			continue
		}
		populated = true
		switch canonical {
		case FieldRevenue:
			f.Revenue = n
		case FieldNetIncome:
			f.NetIncome = n
		case FieldEPS:
			f.EPS = n
		case FieldTotalAssets:
			f.TotalAssets = n
		case FieldTotalLiabilities:
			f.TotalLiabilities = n
		case FieldShareholderEquity:
			f.ShareholderEquity = n
		case FieldOperatingCashFlow:
			f.OperatingCashFlow = n
		case FieldSharesOutstanding:
			f.SharesOutstanding = n
		}
	}

	if !populated {
		return nil
	}
	return f
}
