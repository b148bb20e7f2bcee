// Package clock provides the playback tick that drives a viewer.
package clock

import (
	"sync"
	"time"

	"github.com/user/reelsync/pkg/ports"
)

// Clock posts tick onto a scheduler at a fixed interval.
//
// At most one tick is queued at a time: if the scheduler falls behind,
// ticks coalesce instead of piling up. Ticks queued before a Stop or a
// re-arm are discarded when they run.
type Clock struct {
	sched ports.Scheduler
	tick  func()

	mu       sync.Mutex
	gen      uint64
	interval time.Duration
	running  bool
	pending  bool
	quit     chan struct{}
}

// New creates a stopped clock.
func New(sched ports.Scheduler, tick func()) *Clock {
	return &Clock{sched: sched, tick: tick}
}

// Factory returns a ports.ClockFactory bound to sched.
func Factory(sched ports.Scheduler) ports.ClockFactory {
	return func(tick func()) ports.Clock {
		return New(sched, tick)
	}
}

// Start arms the clock at interval, replacing any previous interval.
func (c *Clock) Start(interval time.Duration) {
	if interval <= 0 {
		interval = time.Millisecond
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()

	c.gen++
	c.interval = interval
	c.running = true
	c.quit = make(chan struct{})
	go c.loop(c.gen, interval, c.quit)
}

// Stop disarms the clock.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.gen++
}

// Running reports whether the clock is armed.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Interval returns the interval of the last Start.
func (c *Clock) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

func (c *Clock) stopLocked() {
	if c.quit != nil {
		close(c.quit)
		c.quit = nil
	}
	c.running = false
	c.pending = false
}

func (c *Clock) loop(gen uint64, interval time.Duration, quit <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-quit:
			return
		case <-t.C:
			c.post(gen)
		}
	}
}

func (c *Clock) post(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.pending {
		c.mu.Unlock()
		return
	}
	c.pending = true
	c.mu.Unlock()

	c.sched.Post(func() {
		c.mu.Lock()
		stale := gen != c.gen
		if !stale {
			c.pending = false
		}
		c.mu.Unlock()
		if !stale {
			c.tick()
		}
	})
}

var _ ports.Clock = (*Clock)(nil)
