// Package relaxed provides debounced and throttled values, meant to be driven
// from a single-threaded update loop such as a UI render loop.
//
// A Debounce holds a published value that lags behind a rapidly changing
// input: it only catches up once the input has been quiet for a delay, or
// immediately on the first change of a burst when the leading edge is enabled,
// or at least once per max wait while the input keeps changing.
//
// Cells do no locking. All calls into a cell, and all Scheduler callbacks, must
// happen on the same goroutine. The loop package provides a real-time
// Scheduler that guarantees this, and the vclock package a virtual-time one
// for tests and simulations.
package relaxed

import (
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// Debounce is a debounced value.
type Debounce[T comparable] struct {
	id        string
	scheduler Scheduler
	onChange  func(T)
	logger    zerolog.Logger

	config Config

	current   T
	published T

	pendingTimer Timer
	ceilingTimer Timer
	leadingFired bool
	alive        bool
}

// NewDebounce returns a debounced value that starts out with initial as both
// its input and its published value.
//
// The value follows the trailing edge by default: it is published once delay
// has passed since the last change. Use Leading, NoTrailing and MaxWait to
// change the edge rules, and OnChange to be notified of publishes.
func NewDebounce[T comparable](
	s Scheduler,
	initial T,
	delay time.Duration,
	opts ...Option,
) *Debounce[T] {
	config := DefaultConfig(delay)
	set := applyOptions(&config, opts)

	d := &Debounce[T]{
		id:        xid.New().String(),
		scheduler: s,
		onChange:  onChangeFunc[T](set),
		config:    config,
		current:   initial,
		published: initial,
		alive:     true,
	}
	d.logger = set.loggerOrNop().With().
		Str("cell", d.id).
		Str("kind", "debounce").
		Logger()

	if set.onChange != nil && onChangeMismatch[T](set) {
		d.logger.Warn().Msg("OnChange callback type does not match value type, ignoring")
	}
	warnUndefined(d.logger, config)

	return d
}

// ID returns the unique identifier of the cell.
func (d *Debounce[T]) ID() string {
	return d.id
}

// Value returns the published, debounced value.
func (d *Debounce[T]) Value() T {
	return d.published
}

// Input returns the latest input value.
func (d *Debounce[T]) Input() T {
	return d.current
}

// Config returns the configuration the cell was last driven with.
func (d *Debounce[T]) Config() Config {
	return d.config
}

// Alive reports whether the cell has not been disposed yet.
func (d *Debounce[T]) Alive() bool {
	return d.alive
}

// Observe is called by the host once per update cycle with the current input.
// The cell is only re-driven when the input differs from the previous cycle.
func (d *Debounce[T]) Observe(v T) error {
	return d.ObserveWith(v, d.config)
}

// ObserveWith is like Observe, but also takes the configuration for this
// cycle. A change to either the input or any configuration field re-drives the
// cell; an unchanged cycle leaves all timers alone.
func (d *Debounce[T]) ObserveWith(v T, cfg Config) error {
	if !d.alive {
		return nil
	}
	if v == d.current && cfg == d.config {
		return nil
	}

	return d.ChangedWith(v, cfg)
}

// Changed drives the cell with a new input value, using the current
// configuration.
func (d *Debounce[T]) Changed(v T) error {
	return d.ChangedWith(v, d.config)
}

// ChangedWith drives the cell with a new input value and the configuration to
// apply from now on. Errors from the Scheduler are returned unmodified.
func (d *Debounce[T]) ChangedWith(v T, cfg Config) error {
	if !d.alive {
		return nil
	}
	if cfg != d.config {
		warnUndefined(d.logger, cfg)
	}

	d.config = cfg
	d.current = v

	// The pending handle is stopped but kept: it is only cleared by a firing,
	// so a non-nil handle means a burst is in progress.
	if d.pendingTimer != nil {
		d.pendingTimer.Stop()
	}

	// Reset first, then check. A leading publish is only remembered until the
	// next change, which is what lets a burst with more than one change still
	// publish on its trailing edge.
	d.leadingFired = false
	if d.pendingTimer == nil && cfg.Leading && !d.leadingFired {
		d.logger.Debug().Msg("leading edge")
		d.publish(v)
		d.leadingFired = true
	}

	timer, err := d.scheduler.AfterFunc(cfg.Delay, func() {
		d.firePending(v, cfg)
	})
	if err != nil {
		// Without a pending timer no burst is in progress, so the next
		// change counts as the first of a new one.
		d.leadingFired = false

		return err
	}
	d.pendingTimer = timer

	if cfg.hasCeiling() && d.ceilingTimer == nil {
		timer, err := d.scheduler.AfterFunc(cfg.MaxWait, func() {
			d.fireCeiling(v)
		})
		if err != nil {
			return err
		}
		d.ceilingTimer = timer
	}

	return nil
}

// Dispose stops both timers and marks the cell dead. Nothing is published
// after Dispose returns. It is safe to call Dispose more than once.
func (d *Debounce[T]) Dispose() {
	if d.alive {
		d.logger.Debug().Msg("disposed")
	}
	d.alive = false
	d.clear()
}

func (d *Debounce[T]) firePending(v T, cfg Config) {
	shouldPublish := !(cfg.Leading && d.leadingFired)
	d.clear()

	if d.alive && cfg.Trailing && shouldPublish {
		d.logger.Debug().Msg("trailing edge")
		d.publish(v)
	}
}

func (d *Debounce[T]) fireCeiling(v T) {
	d.clear()

	if d.alive {
		d.logger.Debug().Msg("max wait reached")
		d.publish(v)
	}
}

// clear stops and forgets both timers and the leading edge bookkeeping.
func (d *Debounce[T]) clear() {
	stop(d.pendingTimer)
	d.pendingTimer = nil
	stop(d.ceilingTimer)
	d.ceilingTimer = nil
	d.leadingFired = false
}

func (d *Debounce[T]) publish(v T) {
	if v == d.published {
		return
	}

	d.published = v
	d.onChange(v)
}

// warnUndefined logs configurations whose behavior is not defined.
func warnUndefined(l zerolog.Logger, c Config) {
	if c.Leading && c.MaxWait > 0 {
		l.Warn().
			Dur("max_wait", c.MaxWait).
			Msg("max wait combined with leading edge is undefined, max wait only follows the trailing edge")
	}
}

func onChangeMismatch[T any](s *settings) bool {
	_, ok := s.onChange.(func(T))

	return !ok
}
