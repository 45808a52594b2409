package utils

import "math"

// ToMinorUnits converts an amount in major currency units to minor units
// (e.g. 150.00 -> 15000). Rounding is half away from zero, so 99.999 -> 10000
// and 0.005 -> 1. The gateway only accepts integer minor-unit amounts.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
