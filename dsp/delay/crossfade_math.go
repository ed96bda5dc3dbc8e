//go:build !fastmath

package delay

import "math"

// crossfadeGains returns the equal-power (old, new) tap gains at progress x in [0, 1].
func crossfadeGains(x float64) (float64, float64) {
	if x <= 0 {
		return 1, 0
	}
	if x >= 1 {
		return 0, 1
	}
	return math.Sqrt(1 - x), math.Sqrt(x)
}
