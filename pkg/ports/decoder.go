package ports

import (
	"errors"

	"github.com/user/reelsync/pkg/frame"
)

// ErrEndOfSequence is returned by DecodeSource.Read when a sequential source
// runs out of frames before the requested index. Callers wrap to frame 0.
var ErrEndOfSequence = errors.New("ports: end of sequence")

// MediaKind distinguishes the two families of frame-sequential media.
type MediaKind int

const (
	// KindVideo is a container decoded sequentially (mp4, mov, avi, mkv...).
	KindVideo MediaKind = iota
	// KindFrameStack is an independently addressable page sequence (multi-page TIFF, GIF, image directory).
	KindFrameStack
)

// String returns the kind name.
func (k MediaKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindFrameStack:
		return "frame-stack"
	default:
		return "unknown"
	}
}

// MediaInfo describes an opened medium. It is immutable after Open.
type MediaInfo struct {
	Path       string
	Kind       MediaKind
	FrameCount int
	Rate       float64 // nominal frames per second
	Width      int
	Height     int
	Codec      string // container codec when known, empty for image stacks
}

// DecodeSource abstracts a frame-sequential medium.
type DecodeSource interface {
	// Open prepares the medium and reports its frame count and nominal rate.
	Open(path string) (MediaInfo, error)

	// Read decodes the frame at index, normalized to 8-bit RGB.
	// Sequential sources return ErrEndOfSequence when the stream ends early.
	Read(index int) (*frame.RGB, error)

	// Close releases decoder resources.
	Close() error
}

// SourceFactory creates an unopened DecodeSource suited to path.
type SourceFactory func(path string) (DecodeSource, error)

// ErrInterrupted is returned by Read when the interrupt installed through
// Interruptible fired before the frame was reached.
var ErrInterrupted = errors.New("ports: read interrupted")

// Interruptible is implemented by sources whose Read may scan through many
// frames, such as a sequential decoder seeking ahead. stop is polled between
// frames; once it returns true Read gives up with ErrInterrupted.
type Interruptible interface {
	SetInterrupt(stop func() bool)
}
