package collections

import "math"

// Rate weighting used for immediate local feedback. The backend's
// /milkcollection/calculate-rate endpoint is the authority for persisted
// records; treat local values as provisional until confirmed there.
const (
	baseRate  = 50.0
	fatWeight = 2.0
	snfWeight = 1.5
)

// Rate computes the provisional per-liter rate from fat and SNF
// percentages, rounded to two decimals. Pure and monotonically
// non-decreasing in both inputs; Rate(0, 0) == 50.00.
func Rate(fatPercentage, snfPercentage float64) float64 {
	return round2(baseRate + fatPercentage*fatWeight + snfPercentage*snfWeight)
}

// Amount computes the payable total for a quantity at the given rate,
// rounded to two decimals.
func Amount(quantity, ratePerLiter float64) float64 {
	return round2(quantity * ratePerLiter)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
