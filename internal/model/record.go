package model

import "time"

// Fundamentals is the normalized company-fundamentals shape shared by all
// providers. Every numeric field is a pointer: nil means the provider did
// not supply the value, which must stay distinguishable from zero so the
// upsert layer can coalesce and downstream ratio math is never fed false
// zeros. Monetary figures are expressed in units (not thousands or
// millions) in the listing currency.
type Fundamentals struct {
	Ticker            string    `json:"ticker"`
	Revenue           *float64  `json:"revenue"`
	NetIncome         *float64  `json:"netIncome"`
	EPS               *float64  `json:"eps"`
	TotalAssets       *float64  `json:"totalAssets"`
	TotalLiabilities  *float64  `json:"totalLiabilities"`
	ShareholderEquity *float64  `json:"shareholderEquity"`
	OperatingCashFlow *float64  `json:"operatingCashFlow"`
	SharesOutstanding *float64  `json:"sharesOutstanding"`
	Currency          string    `json:"currency"`
	Source            string    `json:"source"`
	AsOf              time.Time `json:"asOf"`
}

// DailyPrice is one normalized daily OHLCV bar.
type DailyPrice struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   *float64  `json:"open"`
	High   *float64  `json:"high"`
	Low    *float64  `json:"low"`
	Close  *float64  `json:"close"`
	Volume *int64    `json:"volume"`
	Source string    `json:"source"`
}

// AnalystRating is the normalized analyst recommendation breakdown for
// one period.
type AnalystRating struct {
	Ticker     string `json:"ticker"`
	Period     string `json:"period"` // "2006-01"
	StrongBuy  *int   `json:"strongBuy"`
	Buy        *int   `json:"buy"`
	Hold       *int   `json:"hold"`
	Sell       *int   `json:"sell"`
	StrongSell *int   `json:"strongSell"`
	Source     string `json:"source"`
}

// NormalizedRecord is the common shape every provider adapter maps its
// response into. Exactly one of the payload fields is populated,
// according to Kind.
type NormalizedRecord struct {
	Ticker       string         `json:"ticker"`
	Kind         DataKind       `json:"kind"`
	Fundamentals *Fundamentals  `json:"fundamentals,omitempty"`
	Prices       []DailyPrice   `json:"prices,omitempty"`
	Rating       *AnalystRating `json:"rating,omitempty"`
}

// Empty reports whether the record carries no payload for its kind.
func (r *NormalizedRecord) Empty() bool {
	if r == nil {
		return true
	}
	switch r.Kind {
	case KindFundamentals:
		return r.Fundamentals == nil
	case KindPricing:
		return len(r.Prices) == 0
	case KindRatings:
		return r.Rating == nil
	default:
		return true
	}
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
