package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketfetch/internal/model"
)

// RatingRepository provides data access methods for the analyst_rating
// table, keyed by ticker and period.
type RatingRepository struct {
	db *sql.DB
}

// NewRatingRepository creates a new RatingRepository with the provided
// database connection.
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert inserts or updates the rating row for a ticker and period with
// coalesce-on-NULL semantics.
func (r *RatingRepository) Upsert(ctx context.Context, rating *model.AnalystRating) error {
	query := `
        INSERT INTO analyst_rating (
            ticker, period, strong_buy, buy, hold, sell, strong_sell, source, updated_at
        )
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(ticker, period) DO UPDATE SET
            strong_buy = COALESCE(excluded.strong_buy, analyst_rating.strong_buy),
            buy = COALESCE(excluded.buy, analyst_rating.buy),
            hold = COALESCE(excluded.hold, analyst_rating.hold),
            sell = COALESCE(excluded.sell, analyst_rating.sell),
            strong_sell = COALESCE(excluded.strong_sell, analyst_rating.strong_sell),
            source = excluded.source,
            updated_at = excluded.updated_at
    `

	_, err := r.db.ExecContext(ctx, query,
		rating.Ticker,
		rating.Period,
		rating.StrongBuy,
		rating.Buy,
		rating.Hold,
		rating.Sell,
		rating.StrongSell,
		rating.Source,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rating for %s: %w", rating.Ticker, err)
	}

	return nil
}

// Get retrieves the rating row for a ticker and period.
func (r *RatingRepository) Get(ctx context.Context, ticker, period string) (model.AnalystRating, bool, error) {
	query := `
        SELECT ticker, period, strong_buy, buy, hold, sell, strong_sell, source
        FROM analyst_rating
        WHERE ticker = ? AND period = ?
    `

	var rating model.AnalystRating
	var source sql.NullString
	err := r.db.QueryRowContext(ctx, query, ticker, period).Scan(
		&rating.Ticker,
		&rating.Period,
		&rating.StrongBuy,
		&rating.Buy,
		&rating.Hold,
		&rating.Sell,
		&rating.StrongSell,
		&source,
	)
	if err == sql.ErrNoRows {
		return model.AnalystRating{}, false, nil
	}
	if err != nil {
		return model.AnalystRating{}, false, fmt.Errorf("failed to query analyst_rating table: %w", err)
	}

	rating.Source = source.String
	return rating, true, nil
}
