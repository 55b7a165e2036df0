package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name     string
		part     string
		whole    string
		expected string
	}{
		{"simple share", "300.00", "1000.00", "30"},
		{"full consumption", "1000.00", "1000.00", "100"},
		{"zero whole avoids division", "300.00", "0", "0"},
		{"rounds to currency scale", "1", "3", "33.33"},
		{"over hundred", "1200.00", "1000.00", "120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part, _ := decimal.NewFromString(tt.part)
			whole, _ := decimal.NewFromString(tt.whole)
			expected, _ := decimal.NewFromString(tt.expected)

			got := PercentOf(part, whole)
			if !got.Equal(expected) {
				t.Errorf("PercentOf(%s, %s) = %s, want %s", tt.part, tt.whole, got, expected)
			}
		})
	}
}

func TestSplitGrossVAT(t *testing.T) {
	tests := []struct {
		name        string
		gross       string
		rate        string
		expectedNet string
		expectedVAT string
	}{
		{"standard rate", "120.00", "20", "100.00", "20.00"},
		{"reduced rate", "110.00", "10", "100.00", "10.00"},
		{"zero rate", "120.00", "0", "120.00", "0"},
		{"rounding case", "100.00", "20", "83.33", "16.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gross, _ := decimal.NewFromString(tt.gross)
			rate, _ := decimal.NewFromString(tt.rate)
			expectedNet, _ := decimal.NewFromString(tt.expectedNet)
			expectedVAT, _ := decimal.NewFromString(tt.expectedVAT)

			net, vat := SplitGrossVAT(gross, rate)
			if !net.Equal(expectedNet) {
				t.Errorf("net = %s, want %s", net, expectedNet)
			}
			if !vat.Equal(expectedVAT) {
				t.Errorf("vat = %s, want %s", vat, expectedVAT)
			}
			if !net.Add(vat).Equal(RoundAmount(gross)) {
				t.Errorf("net + vat = %s, does not add back to gross %s", net.Add(vat), gross)
			}
		})
	}
}

func TestRoundAmount(t *testing.T) {
	d, _ := decimal.NewFromString("10.005")
	if got := RoundAmount(d); got.String() != "10.01" {
		t.Errorf("RoundAmount(10.005) = %s, want 10.01", got)
	}
}
