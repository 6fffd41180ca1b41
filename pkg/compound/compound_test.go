package compound

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	l := NewLookup(map[string]string{
		"GT3 - Soft": "s",
		"Qualifying": "Q",
	})

	t.Run("class qualified entry wins", func(t *testing.T) {
		assert.Equal(t, "s", l.Symbol("GT3", "Soft"))
		assert.Equal(t, "S", l.Symbol("LMP2", "Soft"))
	})

	t.Run("falls back to first letter", func(t *testing.T) {
		assert.Equal(t, "B", l.Symbol("GT3", "Bias Ply"))
		assert.Equal(t, "?", l.Symbol("GT3", ""))
	})

	t.Run("label is one symbol per wheel", func(t *testing.T) {
		label := l.Label("GT3", [4]string{"Soft", "Soft", "Medium", "Medium"})
		assert.Equal(t, "ssMM", label)
	})
}
