package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketfetch/internal/model"
)

// FundamentalsRepository provides data access methods for the
// fundamentals table. Writes use field-level coalesce semantics: an
// incoming NULL never overwrites a stored non-NULL value, so a weaker
// fallback provider can never silently degrade data a stronger provider
// wrote on an earlier run. Repeated upserts for the same ticker are
// idempotent.
type FundamentalsRepository struct {
	db *sql.DB
}

// NewFundamentalsRepository creates a new FundamentalsRepository with the
// provided database connection.
func NewFundamentalsRepository(db *sql.DB) *FundamentalsRepository {
	return &FundamentalsRepository{db: db}
}

// Upsert inserts or updates the fundamentals row for a ticker.
func (r *FundamentalsRepository) Upsert(ctx context.Context, f *model.Fundamentals) error {
	query := `
        INSERT INTO fundamentals (
            ticker, revenue, net_income, eps, total_assets, total_liabilities,
            shareholder_equity, operating_cash_flow, shares_outstanding,
            currency, source, updated_at
        )
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(ticker) DO UPDATE SET
            revenue = COALESCE(excluded.revenue, fundamentals.revenue),
            net_income = COALESCE(excluded.net_income, fundamentals.net_income),
            eps = COALESCE(excluded.eps, fundamentals.eps),
            total_assets = COALESCE(excluded.total_assets, fundamentals.total_assets),
            total_liabilities = COALESCE(excluded.total_liabilities, fundamentals.total_liabilities),
            shareholder_equity = COALESCE(excluded.shareholder_equity, fundamentals.shareholder_equity),
            operating_cash_flow = COALESCE(excluded.operating_cash_flow, fundamentals.operating_cash_flow),
            shares_outstanding = COALESCE(excluded.shares_outstanding, fundamentals.shares_outstanding),
            currency = COALESCE(NULLIF(excluded.currency, ''), fundamentals.currency),
            source = excluded.source,
            updated_at = excluded.updated_at
    `

	_, err := r.db.ExecContext(ctx, query,
		f.Ticker,
		f.Revenue,
		f.NetIncome,
		f.EPS,
		f.TotalAssets,
		f.TotalLiabilities,
		f.ShareholderEquity,
		f.OperatingCashFlow,
		f.SharesOutstanding,
		f.Currency,
		f.Source,
		f.AsOf.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fundamentals for %s: %w", f.Ticker, err)
	}

	return nil
}

// Get retrieves the fundamentals row for a ticker.
func (r *FundamentalsRepository) Get(ctx context.Context, ticker string) (model.Fundamentals, bool, error) {
	query := `
        SELECT ticker, revenue, net_income, eps, total_assets, total_liabilities,
               shareholder_equity, operating_cash_flow, shares_outstanding,
               currency, source
        FROM fundamentals
        WHERE ticker = ?
    `

	var f model.Fundamentals
	var currency, source sql.NullString
	err := r.db.QueryRowContext(ctx, query, ticker).Scan(
		&f.Ticker,
		&f.Revenue,
		&f.NetIncome,
		&f.EPS,
		&f.TotalAssets,
		&f.TotalLiabilities,
		&f.ShareholderEquity,
		&f.OperatingCashFlow,
		&f.SharesOutstanding,
		&currency,
		&source,
	)
	if err == sql.ErrNoRows {
		return model.Fundamentals{}, false, nil
	}
	if err != nil {
		return model.Fundamentals{}, false, fmt.Errorf("failed to query fundamentals table: %w", err)
	}

	f.Currency = currency.String
	f.Source = source.String
	return f, true, nil
}
