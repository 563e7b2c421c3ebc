package memory

// ring is a fixed-capacity FIFO. Pushing into a full ring overwrites the oldest entry.
type ring[T any] struct {
	buf  []T
	head int // index of the oldest entry
	size int
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) Len() int {
	return r.size
}

// Push appends v and returns the evicted entry, if any.
func (r *ring[T]) Push(v T) (evicted T, ok bool) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = v
		r.size++
		return evicted, false
	}
	evicted = r.buf[r.head]
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	return evicted, true
}

// At returns a pointer to the i-th oldest entry. The caller must hold the owning lock.
func (r *ring[T]) At(i int) *T {
	return &r.buf[(r.head+i)%len(r.buf)]
}

// Each visits entries oldest first until fn returns false.
func (r *ring[T]) Each(fn func(i int, v *T) bool) {
	for i := 0; i < r.size; i++ {
		if !fn(i, r.At(i)) {
			return
		}
	}
}
