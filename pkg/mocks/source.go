// Package mocks provides test doubles for the ports interfaces.
package mocks

import (
	"errors"
	"sync"
	"time"

	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

// DecodeSource is a func-field mock of ports.DecodeSource.
type DecodeSource struct {
	OpenFunc  func(path string) (ports.MediaInfo, error)
	ReadFunc  func(index int) (*frame.RGB, error)
	CloseFunc func() error
}

func (m *DecodeSource) Open(path string) (ports.MediaInfo, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}
	return ports.MediaInfo{Path: path, FrameCount: 1, Rate: 30, Width: 1, Height: 1}, nil
}

func (m *DecodeSource) Read(index int) (*frame.RGB, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(index)
	}
	return frame.NewRGB(1, 1), nil
}

func (m *DecodeSource) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.DecodeSource = (*DecodeSource)(nil)

// ErrPatternOpen is returned by a PatternSource configured to fail Open.
var ErrPatternOpen = errors.New("mocks: pattern open failed")

// PatternSource produces synthetic frames whose first pixel encodes the
// frame index, so tests can check which frame reached the display.
type PatternSource struct {
	Frames int
	Rate   float64
	Width  int
	Height int
	Kind   ports.MediaKind

	// Sequential sources report Frames+Extra as the count but end early,
	// exercising the end-of-sequence wrap.
	Sequential bool
	Extra      int

	ReadDelay time.Duration
	FailOpen  bool
	FailAt    int // read index that fails; negative disables

	mu     sync.Mutex
	reads  []int
	opened bool
	closed bool
}

// NewPatternSource returns a random-access source of n frames at 30 fps.
func NewPatternSource(n int) *PatternSource {
	return &PatternSource{Frames: n, Rate: 30, Width: 4, Height: 2, Kind: ports.KindFrameStack, FailAt: -1}
}

func (s *PatternSource) Open(path string) (ports.MediaInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOpen {
		return ports.MediaInfo{}, ErrPatternOpen
	}
	s.opened = true
	return ports.MediaInfo{
		Path:       path,
		Kind:       s.Kind,
		FrameCount: s.Frames + s.Extra,
		Rate:       s.Rate,
		Width:      s.Width,
		Height:     s.Height,
	}, nil
}

func (s *PatternSource) Read(index int) (*frame.RGB, error) {
	if s.ReadDelay > 0 {
		time.Sleep(s.ReadDelay)
	}
	s.mu.Lock()
	s.reads = append(s.reads, index)
	s.mu.Unlock()

	if index == s.FailAt {
		return nil, errors.New("mocks: corrupt frame")
	}
	if index >= s.Frames {
		if s.Sequential {
			return nil, ports.ErrEndOfSequence
		}
		return nil, errors.New("mocks: index out of range")
	}
	return PatternFrame(s.Width, s.Height, index), nil
}

func (s *PatternSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Reads returns the indices passed to Read, in order.
func (s *PatternSource) Reads() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.reads...)
}

// Closed reports whether Close was called.
func (s *PatternSource) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Factory returns a ports.SourceFactory that always yields s.
func (s *PatternSource) Factory() ports.SourceFactory {
	return func(string) (ports.DecodeSource, error) {
		return s, nil
	}
}

// PatternFrame builds a frame whose pixel (0,0) is (index%256, index/256, 7).
func PatternFrame(w, h, index int) *frame.RGB {
	f := frame.NewRGB(w, h)
	f.SetPixel(0, 0, uint8(index%256), uint8(index/256), 7)
	return f
}

// PatternIndex decodes the index written by PatternFrame.
func PatternIndex(f *frame.RGB) int {
	r, g, _ := f.Pixel(0, 0)
	return int(r) + int(g)*256
}
