package relaxed

import (
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// Throttle is a throttled value: it follows its input, but is published at
// most once per interval.
type Throttle[T comparable] struct {
	id        string
	scheduler Scheduler
	onChange  func(T)
	logger    zerolog.Logger

	interval    time.Duration
	lastPublish time.Time

	current   T
	published T

	timer Timer
	alive bool
}

// NewThrottle returns a throttled value that starts out with initial as both
// its input and its published value. Creation counts as a publish, so the
// first change is only published once interval has passed since then.
func NewThrottle[T comparable](
	s Scheduler,
	initial T,
	interval time.Duration,
	opts ...Option,
) *Throttle[T] {
	set := applyOptions(nil, opts)

	t := &Throttle[T]{
		id:          xid.New().String(),
		scheduler:   s,
		onChange:    onChangeFunc[T](set),
		interval:    interval,
		lastPublish: s.Now(),
		current:     initial,
		published:   initial,
		alive:       true,
	}
	t.logger = set.loggerOrNop().With().
		Str("cell", t.id).
		Str("kind", "throttle").
		Logger()

	return t
}

// ID returns the unique identifier of the cell.
func (t *Throttle[T]) ID() string {
	return t.id
}

// Value returns the published, throttled value.
func (t *Throttle[T]) Value() T {
	return t.published
}

// Input returns the latest input value.
func (t *Throttle[T]) Input() T {
	return t.current
}

// Alive reports whether the cell has not been disposed yet.
func (t *Throttle[T]) Alive() bool {
	return t.alive
}

// Observe is called by the host once per update cycle with the current input.
// The cell is only re-driven when the input differs from the previous cycle.
func (t *Throttle[T]) Observe(v T) error {
	return t.ObserveWith(v, t.interval)
}

// ObserveWith is like Observe, but also re-drives the cell when the interval
// changed since the previous cycle.
func (t *Throttle[T]) ObserveWith(v T, interval time.Duration) error {
	if !t.alive {
		return nil
	}
	if v == t.current && interval == t.interval {
		return nil
	}

	return t.ChangedWith(v, interval)
}

// Changed drives the cell with a new input value.
func (t *Throttle[T]) Changed(v T) error {
	return t.ChangedWith(v, t.interval)
}

// ChangedWith drives the cell with a new input value and the interval to apply
// from now on. If the interval has passed since the last publish, v is
// published right away. Otherwise a single timer publishes the latest input
// once the interval is up. Errors from the Scheduler are returned unmodified.
func (t *Throttle[T]) ChangedWith(v T, interval time.Duration) error {
	if !t.alive {
		return nil
	}

	t.interval = interval
	t.current = v
	stop(t.timer)
	t.timer = nil

	remaining := t.lastPublish.Add(interval).Sub(t.scheduler.Now())
	if remaining <= 0 {
		t.publish(v)

		return nil
	}

	timer, err := t.scheduler.AfterFunc(remaining, func() {
		t.timer = nil
		if t.alive {
			t.publish(v)
		}
	})
	if err != nil {
		return err
	}
	t.timer = timer

	return nil
}

// Dispose stops the pending timer and marks the cell dead. Nothing is
// published after Dispose returns. It is safe to call Dispose more than once.
func (t *Throttle[T]) Dispose() {
	if t.alive {
		t.logger.Debug().Msg("disposed")
	}
	t.alive = false
	stop(t.timer)
	t.timer = nil
}

// publish only restarts the interval when the published value changes.
func (t *Throttle[T]) publish(v T) {
	if v == t.published {
		return
	}

	t.lastPublish = t.scheduler.Now()
	t.logger.Debug().Time("at", t.lastPublish).Msg("publish")
	t.published = v
	t.onChange(v)
}
