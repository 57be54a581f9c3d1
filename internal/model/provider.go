package model

import (
	"fmt"
	"strings"
)

// DataKind is the category of data requested for a ticker. Each kind has
// its own provider priority order, since providers vary in strength per
// kind.
type DataKind string

const (
	KindFundamentals DataKind = "fundamentals"
	KindPricing      DataKind = "pricing"
	KindRatings      DataKind = "ratings"
)

// ParseDataKind converts a string into a DataKind.
func ParseDataKind(s string) (DataKind, error) {
	switch DataKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindFundamentals:
		return KindFundamentals, nil
	case KindPricing:
		return KindPricing, nil
	case KindRatings:
		return KindRatings, nil
	default:
		return "", fmt.Errorf("unknown data kind %q", s)
	}
}

// Provider is the immutable configuration of one external data source,
// loaded at startup and shared read-only across workers.
type Provider struct {
	ID             string     `json:"id"`
	Kinds          []DataKind `json:"kinds"`          // data kinds this provider can serve
	CallsPerMinute int        `json:"callsPerMinute"` // per-account sliding-window ceiling
	CallsPerDay    int        `json:"callsPerDay"`    // per-account daily ceiling
}

// Supports reports whether the provider can serve the given data kind.
func (p Provider) Supports(kind DataKind) bool {
	for _, k := range p.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
