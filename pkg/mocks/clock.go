package mocks

import (
	"sync"
	"time"

	"github.com/user/reelsync/pkg/ports"
)

// Clock is a manually driven ports.Clock. Tests call Fire to deliver a tick.
type Clock struct {
	mu       sync.Mutex
	tick     func()
	running  bool
	interval time.Duration
	starts   int
}

// NewClock returns a ports.ClockFactory that records each created Clock.
func NewClock(created *[]*Clock) ports.ClockFactory {
	return func(tick func()) ports.Clock {
		c := &Clock{tick: tick}
		if created != nil {
			*created = append(*created, c)
		}
		return c
	}
}

func (c *Clock) Start(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.interval = interval
	c.starts++
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Starts returns how many times Start was called.
func (c *Clock) Starts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts
}

// Fire invokes the tick callback if the clock is running.
func (c *Clock) Fire() bool {
	c.mu.Lock()
	running, tick := c.running, c.tick
	c.mu.Unlock()
	if !running || tick == nil {
		return false
	}
	tick()
	return true
}

var _ ports.Clock = (*Clock)(nil)
