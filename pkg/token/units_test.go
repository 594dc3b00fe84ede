package token

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUnitConversions(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals uint8
		units    string
	}{
		{name: "usdc", raw: "1500000", decimals: 6, units: "1.5"},
		{name: "weth one wei", raw: "1", decimals: 18, units: "0.000000000000000001"},
		{name: "zero decimals", raw: "42", decimals: 0, units: "42"},
		{name: "zero amount", raw: "0", decimals: 18, units: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decimal.RequireFromString(tt.raw)
			units := decimal.RequireFromString(tt.units)

			if got := ToUnits(raw, tt.decimals); !got.Equal(units) {
				t.Errorf("ToUnits(%s, %d) = %s, want %s", tt.raw, tt.decimals, got, tt.units)
			}
			if got := ToBaseUnits(units, tt.decimals); !got.Equal(raw) {
				t.Errorf("ToBaseUnits(%s, %d) = %s, want %s", tt.units, tt.decimals, got, tt.raw)
			}
		})
	}
}

// TestUnitConversionExact tests that one wei survives an 18-decimal round
// trip, which a division-based conversion would truncate to zero
func TestUnitConversionExact(t *testing.T) {
	oneWei := decimal.New(1, 0)
	units := ToUnits(oneWei, 18)
	if units.IsZero() {
		t.Fatalf("one wei must not vanish in conversion")
	}
	back := ToBaseUnits(units, 18)
	if !back.Equal(oneWei) {
		t.Errorf("expected 1, got %s", back)
	}
}

func TestToBaseUnitsFloor(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
	}{
		{name: "exact", amount: "1.5", decimals: 6, want: "1500000"},
		{name: "fractional wei dropped", amount: "0.0000015", decimals: 6, want: "1"},
		{name: "sub-unit dust", amount: "0.00000001", decimals: 6, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBaseUnitsFloor(decimal.RequireFromString(tt.amount), tt.decimals)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
