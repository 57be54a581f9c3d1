package quota

import (
	"database/sql"
	"fmt"

	"marketfetch/internal/model"
)

// Store provides data access methods for the api_quota table: one durable
// counter row per provider/endpoint/day. Increments go through a single
// SQL upsert so concurrent workers, or concurrent process instances
// sharing the database file, never lose updates.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store with the provided database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get retrieves the quota row for a provider/endpoint/day. The second
// return value is false when no calls have been recorded yet.
func (s *Store) Get(provider, endpoint, date string) (model.QuotaRecord, bool, error) {
	query := `
        SELECT provider, endpoint, date, calls_made, calls_limit
        FROM api_quota
        WHERE provider = ? AND endpoint = ? AND date = ?
    `

	var q model.QuotaRecord
	err := s.db.QueryRow(query, provider, endpoint, date).Scan(
		&q.Provider,
		&q.Endpoint,
		&q.Date,
		&q.CallsMade,
		&q.CallsLimit,
	)
	if err == sql.ErrNoRows {
		return model.QuotaRecord{}, false, nil
	}
	if err != nil {
		return model.QuotaRecord{}, false, fmt.Errorf("failed to query api_quota table: %w", err)
	}

	return q, true, nil
}

// Ensure creates a zero row for the provider/endpoint/day if none exists
// and returns the current row either way.
func (s *Store) Ensure(provider, endpoint, date string, limit int) (model.QuotaRecord, error) {
	insert := `
        INSERT INTO api_quota (provider, endpoint, date, calls_made, calls_limit)
        VALUES (?, ?, ?, 0, ?)
        ON CONFLICT(provider, endpoint, date) DO NOTHING
    `
	if _, err := s.db.Exec(insert, provider, endpoint, date, limit); err != nil {
		return model.QuotaRecord{}, fmt.Errorf("failed to ensure api_quota row: %w", err)
	}

	q, _, err := s.Get(provider, endpoint, date)
	return q, err
}

// Increment atomically adds one recorded call to the provider/endpoint/day
// row, creating it if absent. The increment happens inside the database
// engine, so repeated or concurrent calls each count exactly once.
func (s *Store) Increment(provider, endpoint, date string, limit int) error {
	query := `
        INSERT INTO api_quota (provider, endpoint, date, calls_made, calls_limit)
        VALUES (?, ?, ?, 1, ?)
        ON CONFLICT(provider, endpoint, date) DO UPDATE SET
            calls_made = calls_made + 1
    `
	if _, err := s.db.Exec(query, provider, endpoint, date, limit); err != nil {
		return fmt.Errorf("failed to increment api_quota row: %w", err)
	}

	return nil
}

// Usage retrieves all quota rows for a given day, ordered for display.
func (s *Store) Usage(date string) ([]model.QuotaRecord, error) {
	query := `
        SELECT provider, endpoint, date, calls_made, calls_limit
        FROM api_quota
        WHERE date = ?
        ORDER BY provider ASC, endpoint ASC
    `

	rows, err := s.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query api_quota table: %w", err)
	}
	defer rows.Close()

	records := []model.QuotaRecord{}
	for rows.Next() {
		var q model.QuotaRecord
		if err := rows.Scan(&q.Provider, &q.Endpoint, &q.Date, &q.CallsMade, &q.CallsLimit); err != nil {
			return nil, fmt.Errorf("failed to scan api_quota table results: %w", err)
		}
		records = append(records, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api_quota table: %w", err)
	}

	return records, nil
}
