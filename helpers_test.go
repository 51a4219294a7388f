package relaxed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	relaxed "github.com/romdo/go-relaxed"
	"github.com/romdo/go-relaxed/vclock"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ms(n int64) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// publish is a value published by a cell, at a millisecond offset from the
// start of the test.
type publish struct {
	at    int64
	value string
}

// step is something the host does to a cell at a millisecond offset.
type step struct {
	at      int64
	value   string
	dispose bool
}

// recorder collects publishes made through an OnChange callback.
type recorder struct {
	clock     *vclock.Clock
	publishes []publish
}

func newRecorder(clock *vclock.Clock) *recorder {
	return &recorder{clock: clock}
}

func (r *recorder) onChange(v string) {
	r.publishes = append(r.publishes, publish{
		at:    r.clock.Since(epoch).Milliseconds(),
		value: v,
	})
}

// schedule queues the steps on the clock before anything else, so at equal
// times a step always runs before timers armed by the cell.
func schedule(
	t *testing.T,
	clock *vclock.Clock,
	steps []step,
	change func(string) error,
	dispose func(),
) {
	t.Helper()

	for _, s := range steps {
		s := s
		_, err := clock.At(epoch.Add(ms(s.at)), func() {
			if s.dispose {
				dispose()
				return
			}
			require.NoError(t, change(s.value))
		})
		require.NoError(t, err)
	}
}

// leakyScheduler models a host where a callback may already be queued when
// its timer is stopped: Stop never prevents the callback from running.
type leakyScheduler struct {
	*vclock.Clock
}

func (s leakyScheduler) AfterFunc(d time.Duration, f func()) (relaxed.Timer, error) {
	if _, err := s.Clock.AfterFunc(d, f); err != nil {
		return nil, err
	}

	return noopTimer{}, nil
}

type noopTimer struct{}

func (noopTimer) Stop() bool {
	return false
}
