package provider

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *float64
	}{
		{"nil", nil, nil},
		{"float64", 42.5, floatPtr(42.5)},
		{"int", 7, floatPtr(7)},
		{"int64", int64(7), floatPtr(7)},
		{"numeric string", "123.45", floatPtr(123.45)},
		{"padded string", "  99 ", floatPtr(99)},
		{"json.Number", json.Number("3.14"), floatPtr(3.14)},
		{"empty string", "", nil},
		{"N/A", "N/A", nil},
		{"None", "None", nil},
		{"null string", "null", nil},
		{"dash", "-", nil},
		{"garbage", "abc", nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseNumber(%v) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseNumber(%v) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestParseIntTruncates(t *testing.T) {
	got := ParseInt("1234.9")
	if got == nil || *got != 1234 {
		t.Errorf("ParseInt(\"1234.9\") = %v, want 1234", got)
	}
	if ParseInt("N/A") != nil {
		t.Error("Expected nil for sentinel value")
	}
}

func TestScale(t *testing.T) {
	if Scale(nil, 1e6) != nil {
		t.Error("Expected nil to stay nil")
	}
	got := Scale(floatPtr(2.5), 1e6)
	if got == nil || *got != 2.5e6 {
		t.Errorf("Scale(2.5, 1e6) = %v, want 2.5e6", got)
	}
}

func TestMapFundamentals(t *testing.T) {
	fields := FieldMap{
		"totalRevenue": FieldRevenue,
		"netIncome":    FieldNetIncome,
		"trailingEps":  FieldEPS,
		"currency":     FieldCurrency,
	}
	asOf := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	raw := map[string]any{
		"totalRevenue": 383_285_000_000.0,
		"netIncome":    "N/A",
		"trailingEps":  "6.13",
		"currency":     "USD",
		"ignoredField": 1.0,
	}

	f := MapFundamentals("AAPL", "yahoo", raw, fields, asOf)
	if f == nil {
		t.Fatal("Expected a populated record")
	}
	if f.Revenue == nil || *f.Revenue != 383_285_000_000 {
		t.Errorf("Unexpected revenue: %v", f.Revenue)
	}
	if f.NetIncome != nil {
		t.Errorf("Expected N/A net income to stay nil, got %v", *f.NetIncome)
	}
	if f.EPS == nil || *f.EPS != 6.13 {
		t.Errorf("Unexpected EPS: %v", f.EPS)
	}
	if f.Currency != "USD" {
		t.Errorf("Unexpected currency: %q", f.Currency)
	}
	if f.Ticker != "AAPL" || f.Source != "yahoo" {
		t.Errorf("Unexpected identity fields: %q %q", f.Ticker, f.Source)
	}
}

func TestMapFundamentalsAllMissing(t *testing.T) {
	fields := FieldMap{"totalRevenue": FieldRevenue, "currency": FieldCurrency}

	raw := map[string]any{"totalRevenue": "None", "currency": "USD"}

	if f := MapFundamentals("AAPL", "yahoo", raw, fields, time.Now()); f != nil {
		t.Errorf("Expected nil when no numeric field parsed, got %+v", f)
	}
}

func floatPtr(f float64) *float64 { return &f }
