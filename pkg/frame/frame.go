// Package frame defines the normalized pixel buffer that flows through the
// playback pipeline, and the normalization step that produces it.
package frame

import (
	"image"
	"image/color"
)

// BytesPerPixel is the number of bytes per pixel in an RGB frame.
const BytesPerPixel = 3

// RGB is an 8-bit, 3-channel frame stored row-major without padding.
// It implements image.Image so it can be handed to renderers and encoders directly.
type RGB struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRGB allocates a black frame of the given size.
func NewRGB(width, height int) *RGB {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &RGB{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*BytesPerPixel),
	}
}

// Stride returns the number of bytes per row.
func (f *RGB) Stride() int {
	return f.Width * BytesPerPixel
}

// Offset returns the index in Pix of the red byte of pixel (x, y).
func (f *RGB) Offset(x, y int) int {
	return y*f.Stride() + x*BytesPerPixel
}

// Pixel returns the R, G, B values at (x, y).
func (f *RGB) Pixel(x, y int) (r, g, b uint8) {
	i := f.Offset(x, y)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetPixel sets the R, G, B values at (x, y).
func (f *RGB) SetPixel(x, y int, r, g, b uint8) {
	i := f.Offset(x, y)
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
}

// Fill sets every pixel to the same colour.
func (f *RGB) Fill(r, g, b uint8) {
	for i := 0; i+2 < len(f.Pix); i += BytesPerPixel {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
	}
}

// Clone returns a deep copy of the frame.
func (f *RGB) Clone() *RGB {
	if f == nil {
		return nil
	}
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)
	return &RGB{Width: f.Width, Height: f.Height, Pix: pix}
}

// ColorModel implements image.Image.
func (f *RGB) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (f *RGB) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image.
func (f *RGB) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	r, g, b := f.Pixel(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Ensure RGB implements image.Image
var _ image.Image = (*RGB)(nil)
