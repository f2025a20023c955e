package domain

import "math"

// Round6 rounds a DPAYM amount to 6 decimal places, the resolution every
// balance and credited value is stored at. Rounding is applied once per
// computed amount, never to intermediate terms.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
