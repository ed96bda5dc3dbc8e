//go:build fastmath

package delay

import "github.com/meko-christian/algo-approx"

// crossfadeGains returns the equal-power (old, new) tap gains at progress x
// in [0, 1] using fast square-root approximation.
func crossfadeGains(x float64) (float64, float64) {
	if x <= 0 {
		return 1, 0
	}
	if x >= 1 {
		return 0, 1
	}
	return approx.FastSqrt(1 - x), approx.FastSqrt(x)
}
