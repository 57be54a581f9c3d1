package provider

import (
	"encoding/json"
	"strconv"
	"strings"
)

// missing sentinels providers use in place of absent numbers. They must
// parse as missing, not zero, or downstream ratio math silently corrupts.
var missingSentinels = map[string]bool{
	"":     true,
	"n/a":  true,
	"na":   true,
	"none": true,
	"null": true,
	"-":    true,
}

// ParseNumber converts a provider numeric field into a float pointer.
// nil, empty strings and sentinel values like "N/A" yield nil.
func ParseNumber(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case json.Number:
		return ParseNumber(n.String())
	case string:
		if missingSentinels[strings.ToLower(strings.TrimSpace(n))] {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// ParseInt converts a provider numeric field into an int64 pointer, with
// the same missing-value handling as ParseNumber.
func ParseInt(v any) *int64 {
	f := ParseNumber(v)
	if f == nil {
		return nil
	}
	i := int64(*f)
	return &i
}

// Scale multiplies a parsed value in place, for providers that report
// monetary figures in thousands or millions. nil stays nil.
func Scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}
