package repository

import (
	"context"
	"testing"
	"time"

	"marketfetch/internal/model"
	"marketfetch/internal/testutil"
)

func TestFundamentalsUpsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFundamentalsRepository(db)
	ctx := context.Background()

	f := &model.Fundamentals{
		Ticker:   "AAPL",
		Revenue:  model.Float(383_285_000_000),
		EPS:      model.Float(6.13),
		Currency: "USD",
		Source:   "yahoo",
		AsOf:     time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Upsert(ctx, f); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, found, err := repo.Get(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("Expected a stored row")
	}
	if got.Revenue == nil || *got.Revenue != 383_285_000_000 {
		t.Errorf("Unexpected revenue: %v", got.Revenue)
	}
	if got.NetIncome != nil {
		t.Errorf("Expected nil net income, got %v", *got.NetIncome)
	}
	if got.Currency != "USD" || got.Source != "yahoo" {
		t.Errorf("Unexpected currency/source: %q %q", got.Currency, got.Source)
	}
}

func TestFundamentalsCoalesceKeepsStoredValues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFundamentalsRepository(db)
	ctx := context.Background()

	first := &model.Fundamentals{
		Ticker:    "AAPL",
		Revenue:   model.Float(383_285_000_000),
		NetIncome: model.Float(96_995_000_000),
		Currency:  "USD",
		Source:    "yahoo",
		AsOf:      time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	// A later provider supplies EPS but is missing everything else. The
	// stored revenue and net income must survive.
	second := &model.Fundamentals{
		Ticker: "AAPL",
		EPS:    model.Float(6.13),
		Source: "finnhub",
		AsOf:   time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, _, err := repo.Get(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Revenue == nil || *got.Revenue != 383_285_000_000 {
		t.Errorf("Expected stored revenue to survive a NULL update, got %v", got.Revenue)
	}
	if got.NetIncome == nil || *got.NetIncome != 96_995_000_000 {
		t.Errorf("Expected stored net income to survive, got %v", got.NetIncome)
	}
	if got.EPS == nil || *got.EPS != 6.13 {
		t.Errorf("Expected new EPS, got %v", got.EPS)
	}
	// Empty currency must not blank the stored one.
	if got.Currency != "USD" {
		t.Errorf("Expected stored currency to survive, got %q", got.Currency)
	}
	if got.Source != "finnhub" {
		t.Errorf("Expected source to follow the latest write, got %q", got.Source)
	}
}

func TestFundamentalsUpsertIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFundamentalsRepository(db)
	ctx := context.Background()

	f := &model.Fundamentals{
		Ticker:  "AAPL",
		Revenue: model.Float(383_285_000_000),
		Source:  "yahoo",
		AsOf:    time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < 3; i++ {
		if err := repo.Upsert(ctx, f); err != nil {
			t.Fatalf("Upsert %d failed: %v", i, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM fundamentals").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after repeated upserts, got %d", count)
	}
}

func TestFundamentalsGetMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFundamentalsRepository(db)

	_, found, err := repo.Get(context.Background(), "NOSUCH")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("Expected no row for unknown ticker")
	}
}
