package repository

import (
	"context"
	"testing"
	"time"

	"marketfetch/internal/model"
	"marketfetch/internal/testutil"
)

func TestPriceUpsertBatchAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPriceRepository(db)
	ctx := context.Background()

	prices := []model.DailyPrice{
		{
			Ticker: "AAPL",
			Date:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			Open:   model.Float(229),
			High:   model.Float(231),
			Low:    model.Float(228),
			Close:  model.Float(230.5),
			Volume: model.Int64(41_000_000),
			Source: "yahoo",
		},
		{
			Ticker: "AAPL",
			Date:   time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
			Close:  model.Float(232.1),
			Source: "yahoo",
		},
	}
	if err := repo.UpsertBatch(ctx, prices); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	got, err := repo.GetPrices(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetPrices failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 bars, got %d", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Error("Expected ascending date order")
	}
	if got[0].Volume == nil || *got[0].Volume != 41_000_000 {
		t.Errorf("Unexpected volume: %v", got[0].Volume)
	}
	// The second bar has only a close; the rest stay NULL.
	if got[1].Open != nil {
		t.Errorf("Expected nil open on partial bar, got %v", *got[1].Open)
	}
}

func TestPriceCoalesceFillsGapsOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPriceRepository(db)
	ctx := context.Background()

	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	// First provider supplies a close-only bar.
	if err := repo.UpsertBatch(ctx, []model.DailyPrice{{
		Ticker: "AAPL", Date: date, Close: model.Float(230.5), Source: "yahoo",
	}}); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	// Second provider fills in OHLV but reports no close.
	if err := repo.UpsertBatch(ctx, []model.DailyPrice{{
		Ticker: "AAPL", Date: date,
		Open: model.Float(229), High: model.Float(231), Low: model.Float(228),
		Volume: model.Int64(41_000_000), Source: "alphavantage",
	}}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, err := repo.GetPrices(ctx, "AAPL")
	if err != nil {
		t.Fatalf("GetPrices failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 merged bar, got %d", len(got))
	}
	bar := got[0]
	if bar.Close == nil || *bar.Close != 230.5 {
		t.Errorf("Expected stored close to survive a NULL update, got %v", bar.Close)
	}
	if bar.Open == nil || *bar.Open != 229 {
		t.Errorf("Expected gap-filled open, got %v", bar.Open)
	}
	if bar.Source != "alphavantage" {
		t.Errorf("Expected source to follow the latest write, got %q", bar.Source)
	}
}

func TestPriceUpsertEmptyBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPriceRepository(db)

	if err := repo.UpsertBatch(context.Background(), nil); err != nil {
		t.Errorf("Expected empty batch to be a no-op, got %v", err)
	}
}
