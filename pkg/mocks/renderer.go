package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/reelsync/pkg/ports"
)

// Renderer is a ports.Renderer whose canvases record captions and whose
// encoder returns a fixed payload. Func fields override the defaults.
type Renderer struct {
	NewCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeFunc    func(img image.Image, enc ports.Encoding) ([]byte, error)
	ScaleFunc     func(img image.Image, width, height int) image.Image
}

func (m *Renderer) NewCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.NewCanvasFunc != nil {
		return m.NewCanvasFunc(width, height, bg)
	}
	return &Canvas{Width: width, Height: height}
}

func (m *Renderer) Decode(data []byte) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (m *Renderer) Encode(img image.Image, enc ports.Encoding) ([]byte, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, enc)
	}
	return []byte("encoded"), nil
}

func (m *Renderer) Scale(img image.Image, width, height int) image.Image {
	if m.ScaleFunc != nil {
		return m.ScaleFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock ports.Canvas that records the text drawn on it.
type Canvas struct {
	Width  int
	Height int

	mu    sync.Mutex
	texts []string
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {}

func (m *Canvas) FillRect(x, y, w, h int, c color.Color) {}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
}

// Texts returns the strings passed to DrawText in order.
func (m *Canvas) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

func (m *Canvas) Image() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
}

var _ ports.Canvas = (*Canvas)(nil)
