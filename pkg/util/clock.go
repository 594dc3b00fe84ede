package util

import (
	"sync"
	"time"
)

type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

type RealClock struct{}

func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (RealClock) Now() time.Time                         { return time.Now() }

// ManualClock is a Clock for tests: time only moves when Advance is
// called. After shares a single buffered channel, so it supports one
// waiter at a time.
type ManualClock struct {
	mu   sync.Mutex
	now  time.Time
	tick chan time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, tick: make(chan time.Time, 1)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) After(d time.Duration) <-chan time.Time { return c.tick }

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()
	select {
	case c.tick <- now:
	default:
	}
}
