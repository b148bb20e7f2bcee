package ports

import "time"

// Scheduler runs callbacks on a single shared goroutine.
// All viewer state is mutated from callbacks posted here.
type Scheduler interface {
	// Post queues fn to run on the scheduler goroutine.
	Post(fn func())

	// After queues fn to run on the scheduler goroutine once d has elapsed.
	// The returned function cancels the callback if it has not yet been queued.
	After(d time.Duration, fn func()) (cancel func())
}

// Clock drives a periodic tick at a configurable interval.
type Clock interface {
	// Start arms the clock, replacing any previous interval.
	Start(interval time.Duration)

	// Stop disarms the clock. Ticks already queued are discarded.
	Stop()

	// Running reports whether the clock is armed.
	Running() bool

	// Interval returns the current interval.
	Interval() time.Duration
}

// ClockFactory creates a Clock that invokes tick on each period.
type ClockFactory func(tick func()) Clock
