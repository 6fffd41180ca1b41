package queues

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing(t *testing.T) {
	t.Parallel()

	t.Run("newest first", func(t *testing.T) {
		r := NewRing[int](3)
		r.PushFront(1)
		r.PushFront(2)
		r.PushFront(3)
		assert.Equal(t, []int{3, 2, 1}, r.Items())
	})

	t.Run("evicts oldest at capacity", func(t *testing.T) {
		r := NewRing[int](3)
		for i := 1; i <= 5; i++ {
			r.PushFront(i)
		}
		assert.Equal(t, []int{5, 4, 3}, r.Items())
		assert.Equal(t, 3, r.Len())
	})

	t.Run("capacity clamped to one", func(t *testing.T) {
		r := NewRing[int](0)
		r.PushFront(1)
		r.PushFront(2)
		assert.Equal(t, []int{2}, r.Items())
	})

	t.Run("items is a copy", func(t *testing.T) {
		r := NewRing[int](2)
		r.PushFront(1)
		items := r.Items()
		items[0] = 99
		assert.Equal(t, []int{1}, r.Items())
	})
}
