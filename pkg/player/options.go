package player

import (
	"time"

	"github.com/user/reelsync/pkg/framebuffer"
)

// Rate limits match the range offered by the original frame-rate control.
const (
	MinRate     = 1.0
	MaxRate     = 120.0
	DefaultRate = 30.0
)

// Options tunes buffering and seek behaviour.
type Options struct {
	BufferCapacity int
	PollInterval   time.Duration

	// DefaultRate is used when a medium reports no usable frame rate.
	DefaultRate float64

	// After a seek the first frame of the new buffer is shown by a bounded
	// poll: the first attempt after SeekInitialDelay, then up to
	// SeekRetries-1 more, SeekRetryDelay apart.
	SeekInitialDelay time.Duration
	SeekRetries      int
	SeekRetryDelay   time.Duration
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		BufferCapacity:   framebuffer.DefaultCapacity,
		PollInterval:     framebuffer.DefaultPollInterval,
		DefaultRate:      DefaultRate,
		SeekInitialDelay: 100 * time.Millisecond,
		SeekRetries:      5,
		SeekRetryDelay:   50 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BufferCapacity <= 0 {
		o.BufferCapacity = d.BufferCapacity
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.DefaultRate <= 0 {
		o.DefaultRate = d.DefaultRate
	}
	if o.SeekInitialDelay < 0 {
		o.SeekInitialDelay = d.SeekInitialDelay
	}
	if o.SeekRetries <= 0 {
		o.SeekRetries = d.SeekRetries
	}
	if o.SeekRetryDelay < 0 {
		o.SeekRetryDelay = d.SeekRetryDelay
	}
	return o
}

// ClampRate limits r to [MinRate, MaxRate].
func ClampRate(r float64) float64 {
	if r < MinRate {
		return MinRate
	}
	if r > MaxRate {
		return MaxRate
	}
	return r
}
