// Package compositor blends an overlay viewer's latest frame onto a main
// viewer's frames as they are shown.
package compositor

import (
	"errors"
	"sync"

	"github.com/user/reelsync/pkg/adapters/logger"
	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

var (
	// ErrMissingSource is returned by Activate when main or overlay is unset or closed.
	ErrMissingSource = errors.New("compositor: main and overlay sources are required")
	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("compositor: unknown blend mode")
)

// Source is the view of a viewer the compositor needs. References are
// non-owning and checked with Alive before use.
type Source interface {
	ID() string
	Alive() bool
	LastFrame() *frame.RGB
	Subscribe(fn func(f *frame.RGB, index int)) (cancel func())
	Present(f *frame.RGB)
}

// Compositor is created inactive with Normal mode at 50% opacity.
type Compositor struct {
	mu          sync.Mutex
	main        Source
	overlay     Source
	mode        Mode
	opacity     float64
	active      bool
	unsubscribe func()
	blended     int64

	logger ports.Logger
}

// New creates an inactive compositor.
func New(log ports.Logger) *Compositor {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Compositor{
		mode:    Normal,
		opacity: 0.5,
		logger:  log.WithComponent("compositor"),
	}
}

// SetMain sets the viewer whose frames are blended and presented.
// While active the frame subscription moves to the new main.
func (c *Compositor) SetMain(s Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.main = s
	if c.active {
		c.dropSubscriptionLocked()
		if s != nil && s.Alive() {
			c.subscribeLocked()
		} else {
			c.active = false
		}
	}
}

// SetOverlay sets the viewer whose last frame is blended on top.
func (c *Compositor) SetOverlay(s Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlay = s
}

// SetMode selects the blend algebra.
func (c *Compositor) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// SetOpacity sets the overlay weight, clamped to [0,1].
func (c *Compositor) SetOpacity(alpha float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opacity = clamp01(alpha)
}

// Activate starts blending on each main frame update. It fails without
// side effects if either source is missing or closed.
func (c *Compositor) Activate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.main == nil || c.overlay == nil || !c.main.Alive() || !c.overlay.Alive() {
		return ErrMissingSource
	}
	if c.active {
		return nil
	}
	c.active = true
	c.subscribeLocked()
	c.logger.Debug("Overlay active: %s over %s, %s at %.1f", c.overlay.ID(), c.main.ID(), c.mode, c.opacity)
	return nil
}

// Deactivate stops blending. It is idempotent.
func (c *Compositor) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.active = false
	c.dropSubscriptionLocked()
	c.logger.Debug("Overlay inactive")
}

// Forget clears any reference to the viewer with id and deactivates if it
// was in use.
func (c *Compositor) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	used := false
	if c.main != nil && c.main.ID() == id {
		c.main = nil
		used = true
	}
	if c.overlay != nil && c.overlay.ID() == id {
		c.overlay = nil
		used = true
	}
	if used && c.active {
		c.active = false
		c.dropSubscriptionLocked()
	}
}

// Active reports whether blending is on.
func (c *Compositor) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Mode returns the blend mode.
func (c *Compositor) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Opacity returns the overlay weight.
func (c *Compositor) Opacity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opacity
}

// Main returns the main source, or nil.
func (c *Compositor) Main() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.main
}

// Overlay returns the overlay source, or nil.
func (c *Compositor) Overlay() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay
}

// Blended returns how many composited frames have been presented.
func (c *Compositor) Blended() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blended
}

func (c *Compositor) subscribeLocked() {
	main := c.main
	c.unsubscribe = main.Subscribe(func(f *frame.RGB, _ int) {
		c.update(main, f)
	})
}

func (c *Compositor) dropSubscriptionLocked() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// update blends the overlay's last frame onto f and presents the result
// through main. The main viewer's own last frame is left untouched.
func (c *Compositor) update(main Source, f *frame.RGB) {
	c.mu.Lock()
	if !c.active || c.main != main || c.overlay == nil {
		c.mu.Unlock()
		return
	}
	overlay, mode, alpha := c.overlay, c.mode, c.opacity
	c.mu.Unlock()

	if !main.Alive() || !overlay.Alive() {
		return
	}
	over := overlay.LastFrame()
	if f == nil || over == nil {
		return
	}
	out := Blend(f, over, mode, alpha)
	main.Present(out)

	c.mu.Lock()
	c.blended++
	c.mu.Unlock()
}
