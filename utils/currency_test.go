package utils

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"5,000,000", 5000000, true},
		{"$5,000", 5000, true},
		{" $3,000 ", 3000, true},
		{"250000", 250000, true},
		{"1500.50", 1500.5, true},
		{"5,00.0.0", 500, true}, // stray points collapse to one
		{".5", 5, true},         // leading point trimmed
		{"1800.", 1800, true},
		{"", 0, false},
		{"abc", 0, false},
		{"...", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"free", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if ok != tt.ok {
			t.Errorf("ParsePrice(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{5000000, "NGN", "₦5,000,000.00"},
		{2500, "USD", "$2,500.00"},
		{1500.5, "EUR", "€1,500.50"},
		{1234.56, "cad", "C$1,234.56"},
		{99.99, "GBP", "£99.99"},
		{800, "XYZ", "$800.00"}, // unknown currency falls back to USD
		{800, "", "$800.00"},
		{0, "USD", "N/A"},
		{-50, "USD", "N/A"},
	}

	for _, tt := range tests {
		if got := FormatPrice(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatPrice(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"₦", "NGN", true},
		{"$", "USD", true},
		{"€", "EUR", true},
		{"£", "GBP", true},
		{"C$", "CAD", true},
		{"ngn", "NGN", true},
		{"usd", "USD", true},
		{"GBP", "GBP", true},
		{" EUR ", "EUR", true},
		{"All", "", false},
		{"XYZ", "", false},
		{"¥", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeCurrency(tt.in)
		if ok != tt.ok {
			t.Errorf("NormalizeCurrency(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
