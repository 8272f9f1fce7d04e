package sequencer

import (
	"sort"
	"sync"
	"time"
)

// Clock provides the current time and one-shot alarms.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f once, on its own goroutine, after d has elapsed.
	// There is no way to cancel it.
	AfterFunc(d time.Duration, f func())
}

// SystemClock is the wall clock backed by the runtime timer.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc schedules f with time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

type fakeAlarm struct {
	at  time.Time
	seq int
	f   func()
}

// FakeClock is a manually advanced clock for tests. Alarms fire
// synchronously inside Advance, in deadline order.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	alarms []fakeAlarm
	seq    int
}

// NewFakeClock creates a FakeClock reading start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to fire once the clock has advanced by d.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alarms = append(c.alarms, fakeAlarm{at: c.now.Add(d), seq: c.seq, f: f})
	c.seq++
}

// Advance moves the clock forward by d, firing every alarm that falls due.
// Alarms scheduled by a firing alarm also fire if they fall within d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.Slice(c.alarms, func(i, j int) bool {
			if c.alarms[i].at.Equal(c.alarms[j].at) {
				return c.alarms[i].seq < c.alarms[j].seq
			}
			return c.alarms[i].at.Before(c.alarms[j].at)
		})
		if len(c.alarms) == 0 || c.alarms[0].at.After(end) {
			c.now = end
			c.mu.Unlock()
			return
		}
		next := c.alarms[0]
		c.alarms = c.alarms[1:]
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of alarms not yet fired.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alarms)
}
