package queues

// Ring is a fixed-capacity deque that keeps the newest items first and
// silently evicts the oldest when full. Capacity below one is clamped to
// one so a misconfigured history size can never grow unbounded.
type Ring[T any] struct {
	items    []T
	capacity int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

func (r *Ring[T]) PushFront(x T) {
	if len(r.items) == r.capacity {
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append([]T{x}, r.items...)
}

// Items returns a newest-first copy; mutating it does not touch the ring.
func (r *Ring[T]) Items() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Ring[T]) Len() int {
	return len(r.items)
}

func (r *Ring[T]) Clear() {
	r.items = r.items[:0]
}
