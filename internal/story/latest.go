package story

import "sync/atomic"

// Latest is a single-slot holder that always yields the most recent Store.
// Timers read their callbacks through it at fire time instead of capturing
// them when armed.
type Latest[T any] struct {
	v atomic.Pointer[T]
}

func (l *Latest[T]) Store(v T) { l.v.Store(&v) }

func (l *Latest[T]) Load() (T, bool) {
	p := l.v.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
