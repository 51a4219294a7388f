package loop

import (
	"time"

	relaxed "github.com/romdo/go-relaxed"
)

// timer is a deferred callback of a Loop. Its state is only touched on the
// loop goroutine; the underlying time.Timer merely posts a wake-up.
type timer struct {
	t       *time.Timer
	stopped bool
	fired   bool
}

// AfterFunc schedules f to run on the loop once d has elapsed. The returned
// Timer must only be stopped from the loop goroutine. A stopped timer's
// callback never runs, even when its wake-up was already queued.
func (l *Loop) AfterFunc(d time.Duration, f func()) (relaxed.Timer, error) {
	select {
	case <-l.done:
		return nil, ErrClosed
	default:
	}

	tm := &timer{}
	tm.t = time.AfterFunc(d, func() {
		err := l.Post(func() {
			if tm.stopped || tm.fired {
				return
			}
			tm.fired = true
			f()
		})
		if err != nil {
			l.logger.Debug().Err(err).Msg("dropped timer wake-up")
		}
	})

	return tm, nil
}

// Stop prevents the callback from running. It returns false if the callback
// already ran or the timer was already stopped.
func (tm *timer) Stop() bool {
	if tm.stopped || tm.fired {
		return false
	}

	tm.stopped = true
	tm.t.Stop()

	return true
}
