package relaxed

import (
	"time"
)

// Timer is a handle to a deferred callback registered with a Scheduler.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Scheduler is the host timer facility that cells defer their work onto.
//
// Implementations must run callbacks on the same logical thread that drives
// the cells, and a callback whose Timer was stopped must never run, even if
// its deadline has already passed.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) (Timer, error)
}

// stop stops t if it is not nil.
func stop(t Timer) {
	if t != nil {
		t.Stop()
	}
}
