// Package vclock provides a virtual-time Scheduler. Time only moves when the
// clock is advanced, and deferred callbacks run one after another on the
// goroutine that advances it, which makes timing behavior fully deterministic.
package vclock

import (
	"container/heap"
	"errors"
	"fmt"
	"time"

	relaxed "github.com/romdo/go-relaxed"
)

// ErrPast is returned when a callback is scheduled before the current time.
var ErrPast = errors.New("vclock: cannot schedule in the past")

// Clock is a virtual clock with an event queue. A Clock is not safe for
// concurrent use.
type Clock struct {
	now   time.Time
	seq   uint64
	queue eventHeap
}

// New returns a Clock whose current time is start.
func New(start time.Time) *Clock {
	c := &Clock{now: start}
	heap.Init(&c.queue)

	return c
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time {
	return c.now
}

// Since returns the virtual time elapsed since t.
func (c *Clock) Since(t time.Time) time.Duration {
	return c.now.Sub(t)
}

// AfterFunc schedules f to run once the clock has been advanced by d. A
// non-positive d runs f on the next advance, without moving time.
func (c *Clock) AfterFunc(d time.Duration, f func()) (relaxed.Timer, error) {
	if d < 0 {
		d = 0
	}

	t, err := c.at(c.now.Add(d), f)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// At schedules f to run at the given virtual time.
func (c *Clock) At(t time.Time, f func()) (*Timer, error) {
	return c.at(t, f)
}

func (c *Clock) at(t time.Time, f func()) (*Timer, error) {
	if t.Before(c.now) {
		return nil, fmt.Errorf("%w: %s is %s before now",
			ErrPast, t.Format(time.RFC3339Nano), c.now.Sub(t))
	}

	c.seq++
	evt := &event{at: t, seq: c.seq, fn: f}
	heap.Push(&c.queue, evt)

	return &Timer{clock: c, evt: evt}, nil
}

// Pending returns the number of callbacks waiting to run.
func (c *Clock) Pending() int {
	return c.queue.Len()
}

// Next returns the time of the earliest pending callback, and false if there
// is none.
func (c *Clock) Next() (time.Time, bool) {
	if c.queue.Len() == 0 {
		return time.Time{}, false
	}

	return c.queue[0].at, true
}

// Advance moves the clock forward by d, running every callback that falls due
// on the way, including callbacks scheduled by other callbacks.
func (c *Clock) Advance(d time.Duration) int {
	return c.AdvanceTo(c.now.Add(d))
}

// AdvanceTo moves the clock forward to t, running every callback due at or
// before t in time order. Callbacks due at the same time run in the order they
// were scheduled. Before each callback runs, Now returns its due time. It
// returns the number of callbacks run. If t is before now, nothing happens.
func (c *Clock) AdvanceTo(t time.Time) int {
	n := 0
	for c.queue.Len() > 0 && !c.queue[0].at.After(t) {
		evt := heap.Pop(&c.queue).(*event)
		c.now = evt.at
		evt.done = true
		evt.fn()
		n++
	}

	if t.After(c.now) {
		c.now = t
	}

	return n
}

// RunAll runs callbacks until the queue is empty, advancing the clock to each
// callback's due time. It returns the number of callbacks run.
func (c *Clock) RunAll() int {
	n := 0
	for c.queue.Len() > 0 {
		n += c.AdvanceTo(c.queue[0].at)
	}

	return n
}

// Timer is a callback scheduled on a Clock.
type Timer struct {
	clock *Clock
	evt   *event
}

// When returns the time the callback is due.
func (t *Timer) When() time.Time {
	return t.evt.at
}

// Stop removes the callback from the queue. It returns false if the callback
// already ran or was already stopped.
func (t *Timer) Stop() bool {
	if t.evt.done {
		return false
	}

	t.evt.done = true
	heap.Remove(&t.clock.queue, t.evt.index)

	return true
}

type event struct {
	at    time.Time
	seq   uint64
	fn    func()
	index int
	done  bool
}

type eventHeap []*event

func (h eventHeap) Len() int {
	return len(h)
}

// Less orders events by due time, then by scheduling order.
func (h eventHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}

	return h[i].at.Before(h[j].at)
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	evt := x.(*event)
	evt.index = len(*h)
	*h = append(*h, evt)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	evt := old[n-1]
	old[n-1] = nil
	evt.index = -1
	*h = old[0 : n-1]

	return evt
}
