package mocks

import (
	"sync"

	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

// Shown is a frame captured by a Display.
type Shown struct {
	Frame *frame.RGB
	Info  ports.FrameInfo
}

// Display records every frame it is handed.
type Display struct {
	DisplayFunc func(f *frame.RGB, info ports.FrameInfo)

	mu    sync.Mutex
	shown []Shown
}

func (m *Display) Display(f *frame.RGB, info ports.FrameInfo) {
	if m.DisplayFunc != nil {
		m.DisplayFunc(f, info)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = append(m.shown, Shown{Frame: f.Clone(), Info: info})
}

// Shown returns the recorded frames.
func (m *Display) Shown() []Shown {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Shown(nil), m.shown...)
}

// Last returns the most recent frame and whether one exists.
func (m *Display) Last() (Shown, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.shown) == 0 {
		return Shown{}, false
	}
	return m.shown[len(m.shown)-1], true
}

// Indices returns the frame index of each recorded frame.
func (m *Display) Indices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.shown))
	for i, s := range m.shown {
		out[i] = s.Info.Index
	}
	return out
}

// Reset forgets the recorded frames.
func (m *Display) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = nil
}

var _ ports.Display = (*Display)(nil)

// Notifier records reported error messages.
type Notifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *Notifier) ReportError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

// Messages returns the reported messages.
func (m *Notifier) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

var _ ports.Notifier = (*Notifier)(nil)
