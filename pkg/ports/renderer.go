package ports

import (
	"image"
	"image/color"
	"path/filepath"
	"strings"
)

// Renderer decodes stills, encodes snapshots and composes captioned frames.
type Renderer interface {
	NewCanvas(width, height int, bg color.Color) Canvas

	// Decode sniffs the format of data. PNG, JPEG, GIF, BMP, TIFF and WebP are accepted.
	Decode(data []byte) (image.Image, error)

	Encode(img image.Image, enc Encoding) ([]byte, error)

	// Scale resamples img to exactly width x height.
	Scale(img image.Image, width, height int) image.Image
}

// Canvas is a drawing surface for one snapshot.
type Canvas interface {
	DrawImage(img image.Image, x, y int)
	FillRect(x, y, w, h int, c color.Color)

	// DrawText draws text vertically centred on y. x is the left edge,
	// centre or right edge depending on style.Align.
	DrawText(text string, x, y int, style TextStyle)

	Image() image.Image
}

// TextStyle describes caption text.
type TextStyle struct {
	FontSize float64
	FontPath string // empty uses the built-in face
	Color    color.Color
	Align    TextAlign
}

type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat is an output encoding.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatJPEG
)

// Encoding selects the output format. Quality applies to JPEG only;
// zero means the encoder default.
type Encoding struct {
	Format  ImageFormat
	Quality int
}

// FormatForPath picks JPEG for .jpg and .jpeg files and PNG otherwise.
func FormatForPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	}
	return FormatPNG
}
