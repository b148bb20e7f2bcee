// Package summarizer produces end-of-session playback reports.
package summarizer

import "time"

// Summary contains what a playback session did.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	Elapsed     time.Duration

	// Session state
	Sync    bool
	Viewers []ViewerInfo
	Overlay *OverlayInfo
}

// ViewerInfo describes one viewer at the end of the session.
type ViewerInfo struct {
	Slot   int
	Name   string
	Path   string
	Role   string // "master", "follower" or empty
	Kind   string
	Codec  string
	Width  int
	Height int

	FrameCount   int
	CurrentFrame int
	Rate         float64
	Speed        float64
	Playing      bool

	// Loader counters
	Produced int64
	Waits    int64
	Wraps    int64
}

// OverlayInfo describes the compositor configuration.
type OverlayInfo struct {
	MainSlot    int
	OverlaySlot int
	Mode        string
	Opacity     float64
	Active      bool
	Blended     int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithElapsed sets how long the session ran.
func (b *Builder) WithElapsed(d time.Duration) *Builder {
	b.summary.Elapsed = d
	return b
}

// WithSync records whether synchronized playback was on.
func (b *Builder) WithSync(on bool) *Builder {
	b.summary.Sync = on
	return b
}

// AddViewer appends a viewer row.
func (b *Builder) AddViewer(v ViewerInfo) *Builder {
	b.summary.Viewers = append(b.summary.Viewers, v)
	return b
}

// WithOverlay sets the compositor configuration.
func (b *Builder) WithOverlay(o OverlayInfo) *Builder {
	b.summary.Overlay = &o
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
