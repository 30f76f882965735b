package models

import "testing"

func TestRatesHasRate(t *testing.T) {
	nightly := 150.0
	weekly := 900.0
	monthly := 2500.0

	tests := []struct {
		name  string
		rates Rates
		want  bool
	}{
		{"none", Rates{}, false},
		{"nightly only", Rates{Nightly: &nightly}, true},
		{"weekly only", Rates{Weekly: &weekly}, true},
		{"monthly only", Rates{Monthly: &monthly}, true},
		{"all", Rates{Nightly: &nightly, Weekly: &weekly, Monthly: &monthly}, true},
	}

	for _, tt := range tests {
		if got := tt.rates.HasRate(); got != tt.want {
			t.Errorf("%s: HasRate() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
