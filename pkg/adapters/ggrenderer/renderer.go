// Package ggrenderer composes and encodes snapshot images with gg.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user/reelsync/pkg/ports"
)

// DefaultJPEGQuality is used when Encoding.Quality is zero.
const DefaultJPEGQuality = 90

type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) NewCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc}
}

func (r *Renderer) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (r *Renderer) Encode(img image.Image, enc ports.Encoding) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch enc.Format {
	case ports.FormatPNG:
		err = png.Encode(&buf, img)
	case ports.FormatJPEG:
		q := enc.Quality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: q})
	default:
		return nil, fmt.Errorf("unsupported format: %d", enc.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Scale uses Catmull-Rom when shrinking and bilinear when enlarging.
func (r *Renderer) Scale(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	var s draw.Scaler = draw.BiLinear
	if width < img.Bounds().Dx() {
		s = draw.CatmullRom
	}
	s.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas wraps a gg.Context.
type Canvas struct {
	dc   *gg.Context
	face string // font path and size currently loaded
}

func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

func (c *Canvas) FillRect(x, y, w, h int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Fill()
}

// DrawText keeps gg's built-in face if the font cannot be loaded.
func (c *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	if style.FontPath != "" {
		key := fmt.Sprintf("%s@%.1f", style.FontPath, style.FontSize)
		if key != c.face && c.dc.LoadFontFace(style.FontPath, style.FontSize) == nil {
			c.face = key
		}
	}

	var ax float64
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
	case ports.AlignRight:
		ax = 1
	}
	c.dc.SetColor(style.Color)
	c.dc.DrawStringAnchored(text, float64(x), float64(y), ax, 0.5)
}

func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

var _ ports.Canvas = (*Canvas)(nil)
