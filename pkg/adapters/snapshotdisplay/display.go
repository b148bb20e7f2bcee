// Package snapshotdisplay provides a headless Display that writes every Nth
// frame to disk as a PNG with a caption strip.
package snapshotdisplay

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"go.uber.org/atomic"

	"github.com/user/reelsync/pkg/adapters/logger"
	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

// Theme styles the caption strip.
type Theme struct {
	CaptionHeight int
	FontSize      float64
	FontPath      string
	Background    color.Color
	TextColor     color.Color
}

// DefaultTheme returns the default caption style.
func DefaultTheme() Theme {
	return Theme{
		CaptionHeight: 24,
		FontSize:      14,
		Background:    color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 255},
		TextColor:     color.White,
	}
}

// Options configures a snapshot display.
type Options struct {
	Dir      string
	Prefix   string // file name prefix, typically the viewer slot
	Every    int    // write one of every Every frames; <= 0 means every frame
	MaxWidth int    // frames wider than this are scaled down; 0 disables
	Theme    Theme
}

// Display implements ports.Display by writing PNG snapshots.
type Display struct {
	renderer ports.Renderer
	fs       ports.FileSystem
	log      ports.Logger
	opts     Options

	seen    atomic.Int64
	written atomic.Int64
	ready   bool
}

// New creates a snapshot display.
func New(renderer ports.Renderer, fs ports.FileSystem, log ports.Logger, opts Options) *Display {
	if log == nil {
		log = logger.NewNoop()
	}
	if opts.Every <= 0 {
		opts.Every = 1
	}
	if opts.Prefix == "" {
		opts.Prefix = "frame"
	}
	if opts.Theme.Background == nil {
		opts.Theme = DefaultTheme()
	}
	return &Display{
		renderer: renderer,
		fs:       fs,
		log:      log.WithComponent("snapshot"),
		opts:     opts,
	}
}

// Caption formats the caption drawn under frame index of total.
func Caption(index, total int) string {
	return fmt.Sprintf("Frame: %d / %d", index, total-1)
}

// Display writes f when it is the Nth frame seen.
// Write failures are logged and otherwise ignored.
func (d *Display) Display(f *frame.RGB, info ports.FrameInfo) {
	n := d.seen.Inc() - 1
	if n%int64(d.opts.Every) != 0 {
		return
	}

	data, err := d.render(f, info)
	if err != nil {
		d.log.Warn("Failed to write snapshot %s: %v", d.opts.Prefix, err)
		return
	}

	if !d.ready {
		if err := d.fs.MkdirAll(d.opts.Dir); err != nil {
			d.log.Warn("Failed to write snapshot %s: %v", d.opts.Dir, err)
			return
		}
		d.ready = true
	}

	name := fmt.Sprintf("%s-%06d.png", d.opts.Prefix, n)
	if info.Composited {
		name = fmt.Sprintf("%s-%06d-blend.png", d.opts.Prefix, n)
	}
	path := filepath.Join(d.opts.Dir, name)
	if err := d.fs.WriteFile(path, data); err != nil {
		d.log.Warn("Failed to write snapshot %s: %v", path, err)
		return
	}
	d.written.Inc()
	d.log.Debug("Wrote snapshot %s", path)
}

func (d *Display) render(f *frame.RGB, info ports.FrameInfo) ([]byte, error) {
	var img image.Image = f
	w, h := f.Width, f.Height
	if d.opts.MaxWidth > 0 && w > d.opts.MaxWidth {
		h = h * d.opts.MaxWidth / w
		w = d.opts.MaxWidth
		img = d.renderer.Scale(f, w, h)
	}

	theme := d.opts.Theme
	canvas := d.renderer.NewCanvas(w, h+theme.CaptionHeight, theme.Background)
	canvas.DrawImage(img, 0, 0)
	canvas.FillRect(0, h, w, theme.CaptionHeight, theme.Background)
	canvas.DrawText(Caption(info.Index, info.Total), w/2, h+theme.CaptionHeight/2, ports.TextStyle{
		FontSize: theme.FontSize,
		FontPath: theme.FontPath,
		Color:    theme.TextColor,
		Align:    ports.AlignCenter,
	})

	return d.renderer.Encode(canvas.Image(), ports.Encoding{Format: ports.FormatPNG})
}

// Seen returns how many frames were handed to the display.
func (d *Display) Seen() int64 {
	return d.seen.Load()
}

// Written returns how many snapshots were written.
func (d *Display) Written() int64 {
	return d.written.Load()
}

var _ ports.Display = (*Display)(nil)
