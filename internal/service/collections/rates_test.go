package collections

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateBaseline(t *testing.T) {
	require.Equal(t, 50.00, Rate(0, 0))
}

func TestRateKnownValues(t *testing.T) {
	tests := []struct {
		fat, snf float64
		want     float64
	}{
		{fat: 4.2, snf: 8.5, want: 71.15},
		{fat: 3.5, snf: 8.0, want: 69.00},
		{fat: 6.0, snf: 9.0, want: 75.50},
		{fat: 0.1, snf: 0, want: 50.20},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Rate(tt.fat, tt.snf), "fat=%.1f snf=%.1f", tt.fat, tt.snf)
	}
}

func TestRateDeterministicAndMonotonic(t *testing.T) {
	for fat := 0.0; fat <= 10.0; fat += 0.5 {
		for snf := 0.0; snf <= 10.0; snf += 0.5 {
			rate := Rate(fat, snf)
			require.Equal(t, rate, Rate(fat, snf))

			// Non-decreasing in both inputs.
			require.GreaterOrEqual(t, Rate(fat+0.5, snf), rate)
			require.GreaterOrEqual(t, Rate(fat, snf+0.5), rate)
		}
	}
}

func TestAmountRoundsToTwoDecimals(t *testing.T) {
	require.Equal(t, 2988.30, Amount(42, 71.15))
	require.Equal(t, 0.0, Amount(0, 71.15))
	require.Equal(t, 33.33, Amount(3.333, 10))

	for _, q := range []float64{0, 0.25, 1, 12.5, 42, 117.35} {
		for _, fat := range []float64{0, 2.1, 4.2, 6.9} {
			for _, snf := range []float64{0, 7.5, 8.5, 9.1} {
				amount := Amount(q, Rate(fat, snf))
				scaled := amount * 100
				require.InDelta(t, math.Round(scaled), scaled, 1e-6,
					"q=%v fat=%v snf=%v", q, fat, snf)
			}
		}
	}
}
