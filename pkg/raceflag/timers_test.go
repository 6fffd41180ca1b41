package raceflag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYellowSticky(t *testing.T) {
	t.Parallel()

	t.Run("holds after recovery then clears", func(t *testing.T) {
		y := NewYellowSticky(8, 5)
		// slow at t=10, fast again from t=11
		assert.True(t, y.Update(7, 5, false, 10))
		assert.True(t, y.Update(7, 20, false, 11))
		assert.True(t, y.Update(7, 20, false, 14.9))
		assert.False(t, y.Update(7, 20, false, 16))
	})

	t.Run("pits clear the stored timestamp", func(t *testing.T) {
		y := NewYellowSticky(8, 5)
		assert.True(t, y.Update(7, 5, false, 10))
		assert.False(t, y.Update(7, 5, true, 11))
		// leaving pits fast: the old slow sample is gone
		assert.False(t, y.Update(7, 20, false, 12))
	})

	t.Run("vehicles tracked independently by slot", func(t *testing.T) {
		y := NewYellowSticky(8, 5)
		assert.True(t, y.Update(1, 5, false, 10))
		assert.False(t, y.Update(2, 20, false, 10))
		assert.True(t, y.Update(1, 20, false, 12))
	})

	t.Run("reset drops all state", func(t *testing.T) {
		y := NewYellowSticky(8, 5)
		y.Update(1, 5, false, 10)
		y.Reset()
		assert.False(t, y.Update(1, 20, false, 11))
	})
}

func TestPitTimer(t *testing.T) {
	t.Parallel()

	t.Run("full stop and highlight window", func(t *testing.T) {
		p := NewPitTimer(3)
		// enter pits at t=10, stop lasts 5s
		assert.InDelta(t, 0.0, p.Update(true, 10), 1e-9)
		assert.InDelta(t, 2.0, p.Update(true, 12), 1e-9)
		assert.InDelta(t, 5.0, p.Update(true, 15), 1e-9)
		// after leaving, reports -5 while inside the highlight window
		assert.InDelta(t, -5.0, p.Update(false, 16), 1e-9)
		assert.InDelta(t, -5.0, p.Update(false, 18), 1e-9)
		// window over: inactive and timer stopped
		assert.Equal(t, Inactive, p.Update(false, 18.5))
		assert.Equal(t, Inactive, p.Update(false, 30))
	})

	t.Run("inactive before first stop", func(t *testing.T) {
		p := NewPitTimer(3)
		assert.Equal(t, Inactive, p.Update(false, 5))
	})

	t.Run("reset forgets the last stop", func(t *testing.T) {
		p := NewPitTimer(3)
		p.Update(true, 10)
		p.Update(true, 15)
		p.Reset()
		assert.Equal(t, Inactive, p.Update(false, 16))
	})
}

func TestBlueFlagTimer(t *testing.T) {
	t.Parallel()

	t.Run("grows while flagged then resets", func(t *testing.T) {
		b := NewBlueFlagTimer(false)
		assert.InDelta(t, 0.0, b.Update(false, true, 100), 1e-9)
		assert.InDelta(t, 3.0, b.Update(false, true, 103), 1e-9)
		assert.Equal(t, Inactive, b.Update(false, false, 104))
		// new flag session starts from zero
		assert.InDelta(t, 0.0, b.Update(false, true, 110), 1e-9)
	})

	t.Run("race only gate", func(t *testing.T) {
		b := NewBlueFlagTimer(true)
		assert.Equal(t, Inactive, b.Update(false, true, 100))
		assert.InDelta(t, 0.0, b.Update(true, true, 101), 1e-9)
	})
}

func TestTrafficTimer(t *testing.T) {
	t.Parallel()

	t.Run("reports gap while in pits", func(t *testing.T) {
		tr := NewTrafficTimer(5, 8, 8)
		assert.InDelta(t, 2.5, tr.Update(true, 0, 2.5, 100), 1e-9)
	})

	t.Run("grace window after pit exit", func(t *testing.T) {
		tr := NewTrafficTimer(5, 8, 8)
		tr.Update(true, 0, Inactive, 100)
		// exits pits at t=101, fast, but still in the pit-out window
		assert.InDelta(t, 3.0, tr.Update(false, 50, 3.0, 101), 1e-9)
		assert.InDelta(t, 3.0, tr.Update(false, 50, 3.0, 108), 1e-9)
		// window expired
		assert.Equal(t, Inactive, tr.Update(false, 50, 3.0, 110))
	})

	t.Run("low speed on track", func(t *testing.T) {
		tr := NewTrafficTimer(5, 8, 8)
		assert.InDelta(t, 4.0, tr.Update(false, 2, 4.0, 100), 1e-9)
		assert.Equal(t, Inactive, tr.Update(false, 40, 4.0, 101))
	})

	t.Run("gap above maximum is ignored", func(t *testing.T) {
		tr := NewTrafficTimer(5, 8, 8)
		assert.Equal(t, Inactive, tr.Update(true, 0, 6.0, 100))
	})
}

func TestGreenFlagTimer(t *testing.T) {
	t.Parallel()

	t.Run("passes lights through then caps", func(t *testing.T) {
		g := NewGreenFlagTimer(3)
		assert.Equal(t, -1, g.Update(0, 10), "bypass before any lights")
		assert.Equal(t, 3, g.Update(3, 11))
		assert.Equal(t, 1, g.Update(1, 12))
		// lights out at t=13: zero means green flag shown
		assert.Equal(t, 0, g.Update(0, 13))
		assert.Equal(t, 0, g.Update(0, 14.9))
		// display duration capped
		assert.Equal(t, -1, g.Update(0, 15.1))
	})

	t.Run("stuck signal forced off after duration", func(t *testing.T) {
		g := NewGreenFlagTimer(3)
		assert.Equal(t, 2, g.Update(2, 10))
		// signal persists, keeps refreshing the timestamp
		assert.Equal(t, 2, g.Update(2, 20))
		assert.Equal(t, 0, g.Update(0, 22))
		assert.Equal(t, -1, g.Update(0, 24))
	})
}
