package undo

// ring is a bounded deque used as a stack. Pushing onto a full ring evicts the
// oldest element.
type ring[T any] struct {
	buf   []T
	head  int
	count int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) len() int { return r.count }

// push appends v and reports whether the oldest element was evicted.
func (r *ring[T]) push(v T) (evicted T, dropped bool) {
	if len(r.buf) == 0 {
		return v, true
	}
	if r.count == len(r.buf) {
		evicted = r.buf[r.head]
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
		return evicted, true
	}
	r.buf[(r.head+r.count)%len(r.buf)] = v
	r.count++
	return evicted, false
}

func (r *ring[T]) peek() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.buf[(r.head+r.count-1)%len(r.buf)], true
}

func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	idx := (r.head + r.count - 1) % len(r.buf)
	v := r.buf[idx]
	r.buf[idx] = zero
	r.count--
	return v, true
}

func (r *ring[T]) clear() {
	clear(r.buf)
	r.head = 0
	r.count = 0
}

// items returns the elements oldest first.
func (r *ring[T]) items() []T {
	out := make([]T, r.count)
	for i := range out {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}
