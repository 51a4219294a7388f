// Package loop provides a real-time, single goroutine update loop that
// implements relaxed.Scheduler.
//
// Everything posted to a Loop, including the callbacks of its timers, runs one
// at a time on the goroutine that called Run, so cells driven from the loop
// never need locking.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrClosed is returned when posting to a closed Loop.
var ErrClosed = errors.New("loop: closed")

const defaultQueueSize = 64

// Loop is a cooperative update loop.
type Loop struct {
	logger zerolog.Logger
	queue  chan func()

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger of the loop.
func WithLogger(l zerolog.Logger) Option {
	return func(lp *Loop) {
		lp.logger = l
	}
}

// WithQueueSize sets how many callbacks can be queued before Post blocks.
func WithQueueSize(n int) Option {
	return func(lp *Loop) {
		if n > 0 {
			lp.queue = make(chan func(), n)
		}
	}
}

// New returns a Loop. It does nothing until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		logger: zerolog.Nop(),
		queue:  make(chan func(), defaultQueueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run executes posted callbacks on the calling goroutine until ctx is done or
// Close is called. It returns ctx.Err() when stopped by the context, and nil
// when closed.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug().Msg("loop started")
	defer l.logger.Debug().Msg("loop stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case f := <-l.queue:
			f()
		}
	}
}

// Post queues f to run on the loop. It blocks while the queue is full.
func (l *Loop) Post(f func()) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}

	select {
	case <-l.done:
		return ErrClosed
	case l.queue <- f:
		return nil
	}
}

// Do runs f on the loop and waits for it to return. Do must not be called from
// the loop goroutine, including from timer callbacks and OnChange callbacks of
// cells driven by the loop: it would wait on itself forever. Use Post there.
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	err := l.Post(func() {
		defer close(finished)
		f()
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	case <-finished:
		return nil
	}
}

// Close stops the loop. Callbacks still queued are dropped. It is safe to call
// Close more than once.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// Now returns the current wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}
