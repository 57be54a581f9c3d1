package testutil

import (
	"time"

	"marketfetch/internal/model"
)

// CreateFundamentalsRecord builds a normalized fundamentals record with
// plausible figures for a ticker.
func CreateFundamentalsRecord(ticker, source string) *model.NormalizedRecord {
	return &model.NormalizedRecord{
		Ticker: ticker,
		Kind:   model.KindFundamentals,
		Fundamentals: &model.Fundamentals{
			Ticker:    ticker,
			Revenue:   model.Float(383_285_000_000),
			NetIncome: model.Float(96_995_000_000),
			EPS:       model.Float(6.13),
			Currency:  "USD",
			Source:    source,
			AsOf:      time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
	}
}

// CreatePricingRecord builds a normalized pricing record with the given
// number of consecutive daily bars ending yesterday.
func CreatePricingRecord(ticker, source string, days int) *model.NormalizedRecord {
	rec := &model.NormalizedRecord{
		Ticker: ticker,
		Kind:   model.KindPricing,
	}
	end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i)
		base := 100.0 + float64(i)
		rec.Prices = append(rec.Prices, model.DailyPrice{
			Ticker: ticker,
			Date:   date,
			Open:   model.Float(base),
			High:   model.Float(base + 1),
			Low:    model.Float(base - 1),
			Close:  model.Float(base + 0.5),
			Volume: model.Int64(1_000_000),
			Source: source,
		})
	}
	return rec
}

// CreateRatingRecord builds a normalized analyst rating record.
func CreateRatingRecord(ticker, source string) *model.NormalizedRecord {
	return &model.NormalizedRecord{
		Ticker: ticker,
		Kind:   model.KindRatings,
		Rating: &model.AnalystRating{
			Ticker:     ticker,
			Period:     "2025-08",
			StrongBuy:  model.Int(12),
			Buy:        model.Int(20),
			Hold:       model.Int(8),
			Sell:       model.Int(2),
			StrongSell: model.Int(1),
			Source:     source,
		},
	}
}
