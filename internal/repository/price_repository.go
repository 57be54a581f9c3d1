package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketfetch/internal/model"
)

// PriceRepository provides data access methods for the daily_price table,
// with the same coalesce-on-NULL upsert semantics as the fundamentals
// table: a bar from a fallback provider fills gaps but never blanks out
// fields an earlier provider supplied.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided
// database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// UpsertBatch writes a set of daily bars inside one transaction, so a
// re-run after a partial failure converges on the same rows.
func (r *PriceRepository) UpsertBatch(ctx context.Context, prices []model.DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin price upsert transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO daily_price (ticker, date, open, high, low, close, volume, source, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(ticker, date) DO UPDATE SET
            open = COALESCE(excluded.open, daily_price.open),
            high = COALESCE(excluded.high, daily_price.high),
            low = COALESCE(excluded.low, daily_price.low),
            close = COALESCE(excluded.close, daily_price.close),
            volume = COALESCE(excluded.volume, daily_price.volume),
            source = excluded.source,
            updated_at = excluded.updated_at
    `

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range prices {
		_, err := stmt.ExecContext(ctx,
			p.Ticker,
			p.Date.UTC().Format("2006-01-02"),
			p.Open,
			p.High,
			p.Low,
			p.Close,
			p.Volume,
			p.Source,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert price for %s on %s: %w",
				p.Ticker, p.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price upsert transaction: %w", err)
	}

	return nil
}

// GetPrices retrieves stored bars for a ticker ordered by date ascending.
func (r *PriceRepository) GetPrices(ctx context.Context, ticker string) ([]model.DailyPrice, error) {
	query := `
        SELECT ticker, date, open, high, low, close, volume, source
        FROM daily_price
        WHERE ticker = ?
        ORDER BY date ASC
    `

	rows, err := r.db.QueryContext(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily_price table: %w", err)
	}
	defer rows.Close()

	prices := []model.DailyPrice{}
	for rows.Next() {
		var p model.DailyPrice
		var dateStr string
		var source sql.NullString

		if err := rows.Scan(&p.Ticker, &dateStr, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume, &source); err != nil {
			return nil, fmt.Errorf("failed to scan daily_price table results: %w", err)
		}

		p.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		p.Source = source.String
		prices = append(prices, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily_price table: %w", err)
	}

	return prices, nil
}
