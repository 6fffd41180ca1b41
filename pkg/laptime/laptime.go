package laptime

import "math"

// WrapDelta returns the signed distance from b to a on a circular lap of
// the given period, normalized into (-period/2, +period/2]. Positive means
// a is ahead of b on track, negative behind.
//
// The modulo is floor-style so the wrap works the same on both sides of
// the start line. Callers must check period > 0 first; this function does
// not validate, it sits on the per-tick hot path.
func WrapDelta(a, b, period float64) float64 {
	diff := a - b
	diff -= math.Floor(diff/period) * period
	if diff > period*0.5 {
		diff -= period
	}
	return diff
}
