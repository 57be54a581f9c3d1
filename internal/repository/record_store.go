package repository

import (
	"context"
	"database/sql"
	"fmt"

	"marketfetch/internal/model"
)

// RecordStore routes a normalized record to the table for its data kind.
// It is the single persistence entry point the orchestrator uses.
type RecordStore struct {
	fundamentals *FundamentalsRepository
	prices       *PriceRepository
	ratings      *RatingRepository
}

// NewRecordStore creates a RecordStore over all three record tables.
func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{
		fundamentals: NewFundamentalsRepository(db),
		prices:       NewPriceRepository(db),
		ratings:      NewRatingRepository(db),
	}
}

// Persist upserts the record's payload. An empty record is rejected: the
// orchestrator must never persist a no-data response as success.
func (s *RecordStore) Persist(ctx context.Context, rec *model.NormalizedRecord) error {
	if rec.Empty() {
		return fmt.Errorf("refusing to persist empty record for %s/%s", rec.Ticker, rec.Kind)
	}

	switch rec.Kind {
	case model.KindFundamentals:
		return s.fundamentals.Upsert(ctx, rec.Fundamentals)
	case model.KindPricing:
		return s.prices.UpsertBatch(ctx, rec.Prices)
	case model.KindRatings:
		return s.ratings.Upsert(ctx, rec.Rating)
	default:
		return fmt.Errorf("no table for data kind %q", rec.Kind)
	}
}

// Fundamentals exposes the fundamentals repository.
func (s *RecordStore) Fundamentals() *FundamentalsRepository { return s.fundamentals }

// Prices exposes the price repository.
func (s *RecordStore) Prices() *PriceRepository { return s.prices }

// Ratings exposes the rating repository.
func (s *RecordStore) Ratings() *RatingRepository { return s.ratings }
