package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Durable call counters, one row per provider/endpoint/day
		CREATE TABLE api_quota (
			provider VARCHAR(32) NOT NULL,
			endpoint VARCHAR(64) NOT NULL,
			date DATE NOT NULL,
			calls_made INTEGER NOT NULL DEFAULT 0,
			calls_limit INTEGER NOT NULL,
			PRIMARY KEY (provider, endpoint, date)
		);

		-- Normalized company fundamentals
		CREATE TABLE fundamentals (
			ticker VARCHAR(12) NOT NULL PRIMARY KEY,
			revenue FLOAT,
			net_income FLOAT,
			eps FLOAT,
			total_assets FLOAT,
			total_liabilities FLOAT,
			shareholder_equity FLOAT,
			operating_cash_flow FLOAT,
			shares_outstanding FLOAT,
			currency VARCHAR(3),
			source VARCHAR(32),
			updated_at DATETIME
		);

		-- Normalized daily OHLCV bars
		CREATE TABLE daily_price (
			ticker VARCHAR(12) NOT NULL,
			date DATE NOT NULL,
			open FLOAT,
			high FLOAT,
			low FLOAT,
			close FLOAT,
			volume INTEGER,
			source VARCHAR(32),
			updated_at DATETIME,
			PRIMARY KEY (ticker, date)
		);

		-- Normalized analyst recommendation breakdowns
		CREATE TABLE analyst_rating (
			ticker VARCHAR(12) NOT NULL,
			period VARCHAR(10) NOT NULL,
			strong_buy INTEGER,
			buy INTEGER,
			hold INTEGER,
			sell INTEGER,
			strong_sell INTEGER,
			source VARCHAR(32),
			updated_at DATETIME,
			PRIMARY KEY (ticker, period)
		);
	`

	_, err := db.Exec(schema)
	return err
}
