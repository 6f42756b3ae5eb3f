package history

// Ring is a bounded deque. Pushing beyond capacity overwrites the oldest entry.
type Ring[T any] struct {
	buf   []T
	head  int // index of the oldest entry
	count int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Len() int { return r.count }
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Push appends v and reports whether the oldest entry was evicted.
func (r *Ring[T]) Push(v T) bool {
	if r.count == len(r.buf) {
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
		return true
	}
	r.buf[(r.head+r.count)%len(r.buf)] = v
	r.count++
	return false
}

// Pop removes and returns the newest entry.
func (r *Ring[T]) Pop() (T, bool) {
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

// Peek returns the newest entry without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return r.buf[(r.head+r.count-1)%len(r.buf)], true
}

// Items returns the entries oldest first.
func (r *Ring[T]) Items() []T {
	res := make([]T, 0, r.count)
	for i := 0; i < r.count; i++ {
		res = append(res, r.buf[(r.head+i)%len(r.buf)])
	}
	return res
}

func (r *Ring[T]) Clear() {
	clear(r.buf)
	r.head = 0
	r.count = 0
}
