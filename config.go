package relaxed

import (
	"time"
)

// Config holds the edge and ceiling rules of a debounced value. It is
// comparable, so a host can check whether the configuration changed between
// two update cycles.
type Config struct {
	// Delay is the quiet period required before a trailing publish.
	Delay time.Duration

	// Leading publishes the first change of a burst immediately.
	Leading bool

	// Trailing publishes the latest value once Delay has passed without
	// further changes.
	Trailing bool

	// MaxWait, when positive, forces a publish at least this often while
	// changes keep arriving. It only applies when Trailing is set.
	MaxWait time.Duration
}

// DefaultConfig returns the default configuration for the given delay:
// trailing edge only, without a max wait.
func DefaultConfig(delay time.Duration) Config {
	return Config{Delay: delay, Trailing: true}
}

// Set applies the given options to the config.
func (c *Config) Set(o ...Option) {
	for _, opt := range o {
		opt(&settings{config: c})
	}
}

// hasCeiling reports whether a max wait timer should be armed for a burst.
func (c Config) hasCeiling() bool {
	return c.MaxWait > 0 && c.Trailing
}
