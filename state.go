package relaxed

import (
	"time"
)

// DebounceState pairs a realtime value with its debounced counterpart, for
// hosts that own the input value themselves.
type DebounceState[T comparable] struct {
	value     T
	debounced *Debounce[T]
}

// NewDebounceState returns a DebounceState holding initial. The options are
// the same as for NewDebounce.
func NewDebounceState[T comparable](
	s Scheduler,
	initial T,
	delay time.Duration,
	opts ...Option,
) *DebounceState[T] {
	return &DebounceState[T]{
		value:     initial,
		debounced: NewDebounce(s, initial, delay, opts...),
	}
}

// Set updates the realtime value and drives the debounced value with it.
func (s *DebounceState[T]) Set(v T) error {
	s.value = v

	return s.debounced.Observe(v)
}

// Update sets the realtime value to the result of f applied to the current
// one.
func (s *DebounceState[T]) Update(f func(T) T) error {
	return s.Set(f(s.value))
}

// Get returns the realtime value.
func (s *DebounceState[T]) Get() T {
	return s.value
}

// Debounced returns the debounced value.
func (s *DebounceState[T]) Debounced() T {
	return s.debounced.Value()
}

// Cell returns the underlying debounced cell.
func (s *DebounceState[T]) Cell() *Debounce[T] {
	return s.debounced
}

// Dispose disposes the debounced value.
func (s *DebounceState[T]) Dispose() {
	s.debounced.Dispose()
}
