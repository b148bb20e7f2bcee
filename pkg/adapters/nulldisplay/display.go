// Package nulldisplay provides a Display that discards frames.
package nulldisplay

import (
	"go.uber.org/atomic"

	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

// Display discards frames but counts them.
type Display struct {
	frames     atomic.Int64
	composited atomic.Int64
}

// New creates a new null display.
func New() *Display {
	return &Display{}
}

// Display counts f and drops it.
func (d *Display) Display(f *frame.RGB, info ports.FrameInfo) {
	d.frames.Inc()
	if info.Composited {
		d.composited.Inc()
	}
}

// Frames returns how many frames were handed to the display.
func (d *Display) Frames() int64 {
	return d.frames.Load()
}

// Composited returns how many of those frames were blend results.
func (d *Display) Composited() int64 {
	return d.composited.Load()
}

var _ ports.Display = (*Display)(nil)
