package laptime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapDelta(t *testing.T) {
	t.Parallel()

	t.Run("no wrap needed", func(t *testing.T) {
		assert.InDelta(t, 10.0, WrapDelta(40, 30, 90), 1e-9)
		assert.InDelta(t, -10.0, WrapDelta(30, 40, 90), 1e-9)
	})

	t.Run("wraps across start line", func(t *testing.T) {
		// car at 1s into lap vs car at 89s of a 90s lap: 2s apart, not 88
		assert.InDelta(t, 2.0, WrapDelta(1, 89, 90), 1e-9)
		assert.InDelta(t, -2.0, WrapDelta(89, 1, 90), 1e-9)
	})

	t.Run("half lap lands on positive boundary", func(t *testing.T) {
		assert.InDelta(t, 45.0, WrapDelta(45, 0, 90), 1e-9)
		assert.InDelta(t, 45.0, WrapDelta(0, 45, 90), 1e-9)
	})

	t.Run("magnitude never exceeds half period", func(t *testing.T) {
		for a := 0.0; a < 120; a += 7.3 {
			for b := 0.0; b < 120; b += 11.1 {
				d := WrapDelta(a, b, 90)
				assert.LessOrEqual(t, math.Abs(d), 45.0, "a=%v b=%v", a, b)
			}
		}
	})

	t.Run("antisymmetric away from boundary", func(t *testing.T) {
		for a := 0.0; a < 90; a += 4.7 {
			for b := 0.0; b < 90; b += 6.1 {
				d := WrapDelta(a, b, 90)
				if math.Abs(d) == 45.0 {
					continue // both directions report +half at the exact boundary
				}
				assert.InDelta(t, -d, WrapDelta(b, a, 90), 1e-9, "a=%v b=%v", a, b)
			}
		}
	})

	t.Run("inputs outside one lap still normalize", func(t *testing.T) {
		assert.InDelta(t, 5.0, WrapDelta(185, 90, 90), 1e-9)
		assert.InDelta(t, -5.0, WrapDelta(-5, 0, 90), 1e-9)
	})
}
