package dynamo

import "math"

// Clamp restricts v to [lo, hi]. NaN maps to lo so a saturated signal never
// leaves its range, even after the plant or controller diverges.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1 with the sign of v.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
