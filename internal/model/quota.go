package model

// QuotaRecord is one durable counter row: calls made against a
// provider/endpoint on a given day, versus the allowed ceiling. Rows are
// created on first use, incremented on every recorded call, never
// decremented, and superseded by a new row the next day. Because they are
// persisted, quota state survives process restarts within the same day.
type QuotaRecord struct {
	Provider   string `json:"provider"`
	Endpoint   string `json:"endpoint"`
	Date       string `json:"date"` // "2006-01-02", UTC
	CallsMade  int    `json:"callsMade"`
	CallsLimit int    `json:"callsLimit"`
}

// Exhausted reports whether the row has reached its ceiling.
func (q QuotaRecord) Exhausted() bool {
	return q.CallsMade >= q.CallsLimit
}
