package relaxed

import (
	"time"

	"github.com/rs/zerolog"
)

// settings is what options operate on. Options that only make sense for a
// debounced value modify config; the rest apply to every cell.
type settings struct {
	config   *Config
	logger   *zerolog.Logger
	onChange any
}

// Option configures a Debounce, Throttle or DebounceState.
type Option func(*settings)

// Leading returns an option that publishes the first change of a burst
// immediately.
//
// When combined with the default trailing edge, a burst publishes on its first
// change and again when the delay expires, unless the first change was the only
// one in the burst.
func Leading() Option {
	return func(s *settings) {
		if s.config != nil {
			s.config.Leading = true
		}
	}
}

// Trailing returns an option that publishes the latest value once the delay has
// passed since the last change. Trailing is on by default.
func Trailing() Option {
	return func(s *settings) {
		if s.config != nil {
			s.config.Trailing = true
		}
	}
}

// NoTrailing disables the trailing edge. Combined with Leading, every burst
// publishes exactly once, on its first change.
func NoTrailing() Option {
	return func(s *settings) {
		if s.config != nil {
			s.config.Trailing = false
		}
	}
}

// MaxWait returns an option that forces a publish at least every maxWait while
// changes keep arriving within the delay.
//
// Without a max wait, a value changing non-stop faster than the delay is never
// published. The max wait only applies to the trailing edge.
func MaxWait(maxWait time.Duration) Option {
	return func(s *settings) {
		if s.config != nil {
			s.config.MaxWait = maxWait
		}
	}
}

// OnChange returns an option registering f to be called with the published
// value whenever it changes. The type parameter must match the cell's value
// type, otherwise the option is ignored.
func OnChange[T any](f func(T)) Option {
	return func(s *settings) {
		s.onChange = f
	}
}

// WithLogger sets the logger used by the cell. Cells log nothing by default.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = &l
	}
}

func applyOptions(c *Config, opts []Option) *settings {
	s := &settings{config: c}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *settings) loggerOrNop() zerolog.Logger {
	if s.logger == nil {
		return zerolog.Nop()
	}

	return *s.logger
}

func onChangeFunc[T any](s *settings) func(T) {
	if f, ok := s.onChange.(func(T)); ok && f != nil {
		return f
	}

	return func(T) {}
}
