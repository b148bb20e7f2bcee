// Package framebuffer provides the bounded FIFO that carries decoded frames
// from a loader goroutine to the viewer's tick.
package framebuffer

import (
	"time"

	"github.com/user/reelsync/pkg/frame"
)

const (
	// DefaultCapacity is the number of frames buffered ahead of the display.
	DefaultCapacity = 30
	// DefaultPollInterval bounds the producer's backoff while the buffer is full.
	DefaultPollInterval = 10 * time.Millisecond

	minBackoff = time.Millisecond
)

// Item is a decoded frame tagged with its index in the medium.
type Item struct {
	Frame *frame.RGB
	Index int
}

// Buffer is a bounded multi-goroutine FIFO of Items.
// Pop never blocks; Push polls with a bounded backoff while full.
type Buffer struct {
	items chan Item
	poll  time.Duration
}

// New creates a buffer holding at most capacity items.
func New(capacity int, poll time.Duration) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Buffer{
		items: make(chan Item, capacity),
		poll:  poll,
	}
}

// TryPop returns the oldest item, or false if the buffer is empty.
func (b *Buffer) TryPop() (Item, bool) {
	select {
	case it := <-b.items:
		return it, true
	default:
		return Item{}, false
	}
}

// TryPush appends item if there is room.
func (b *Buffer) TryPush(item Item) bool {
	select {
	case b.items <- item:
		return true
	default:
		return false
	}
}

// Push appends item, waiting while the buffer is full.
// The wait doubles from 1ms up to the poll interval, and stopped is checked
// between attempts. It returns false if stopped reported true before the
// item was queued, along with the number of full-buffer waits.
func (b *Buffer) Push(item Item, stopped func() bool) (bool, int) {
	waits := 0
	backoff := minBackoff
	if backoff > b.poll {
		backoff = b.poll
	}
	for {
		if stopped != nil && stopped() {
			return false, waits
		}
		if b.TryPush(item) {
			return true, waits
		}
		waits++
		time.Sleep(backoff)
		if backoff < b.poll {
			backoff *= 2
			if backoff > b.poll {
				backoff = b.poll
			}
		}
	}
}

// Drain discards every buffered item and returns how many were dropped.
func (b *Buffer) Drain() int {
	n := 0
	for {
		if _, ok := b.TryPop(); !ok {
			return n
		}
		n++
	}
}

// Len returns the number of buffered items.
func (b *Buffer) Len() int {
	return len(b.items)
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return cap(b.items)
}

// PollInterval returns the upper bound on the producer's backoff.
func (b *Buffer) PollInterval() time.Duration {
	return b.poll
}
