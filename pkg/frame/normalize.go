package frame

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Variant tags the layout of a raw decoded frame.
type Variant int

const (
	// VariantRGB8 is 8-bit, 3-channel RGB.
	VariantRGB8 Variant = iota
	// VariantGray8 is 8-bit single-channel grayscale.
	VariantGray8
	// VariantRGBA8 is 8-bit, 4-channel RGBA. Alpha is dropped, not blended.
	VariantRGBA8
	// VariantDeep is any non-8-bit depth with 1, 3 or 4 channels.
	VariantDeep
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantRGB8:
		return "rgb8"
	case VariantGray8:
		return "gray8"
	case VariantRGBA8:
		return "rgba8"
	case VariantDeep:
		return "deep"
	default:
		return "unknown"
	}
}

var (
	// ErrUnsupportedChannels is returned for channel counts other than 1, 3 or 4.
	ErrUnsupportedChannels = errors.New("frame: unsupported channel count")
	// ErrShortBuffer is returned when the sample buffer is smaller than the geometry implies.
	ErrShortBuffer = errors.New("frame: sample buffer too short")
)

// Raw is a decoded frame before normalization.
// Pix carries the samples for the 8-bit variants; Deep carries them for VariantDeep.
type Raw struct {
	Variant  Variant
	Width    int
	Height   int
	Channels int // only consulted for VariantDeep
	Pix      []uint8
	Deep     []uint16
}

// Normalize converts a raw frame into 8-bit RGB.
//
// Deep frames are rescaled linearly so the frame minimum maps to 0 and the
// maximum to 255; a constant frame maps to all zero. Grayscale is replicated
// to three channels and 4-channel input keeps only its R, G and B samples.
func Normalize(raw Raw) (*RGB, error) {
	n := raw.Width * raw.Height
	out := NewRGB(raw.Width, raw.Height)

	switch raw.Variant {
	case VariantRGB8:
		if len(raw.Pix) < n*3 {
			return nil, ErrShortBuffer
		}
		copy(out.Pix, raw.Pix[:n*3])

	case VariantGray8:
		if len(raw.Pix) < n {
			return nil, ErrShortBuffer
		}
		for i := 0; i < n; i++ {
			v := raw.Pix[i]
			out.Pix[i*3] = v
			out.Pix[i*3+1] = v
			out.Pix[i*3+2] = v
		}

	case VariantRGBA8:
		if len(raw.Pix) < n*4 {
			return nil, ErrShortBuffer
		}
		for i := 0; i < n; i++ {
			out.Pix[i*3] = raw.Pix[i*4]
			out.Pix[i*3+1] = raw.Pix[i*4+1]
			out.Pix[i*3+2] = raw.Pix[i*4+2]
		}

	case VariantDeep:
		if err := normalizeDeep(raw, out); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("frame: unknown variant %d", raw.Variant)
	}

	return out, nil
}

func normalizeDeep(raw Raw, out *RGB) error {
	ch := raw.Channels
	if ch != 1 && ch != 3 && ch != 4 {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, ch)
	}
	n := raw.Width * raw.Height
	if len(raw.Deep) < n*ch {
		return ErrShortBuffer
	}
	samples := raw.Deep[:n*ch]
	if len(samples) == 0 {
		return nil
	}

	// alpha is dropped on output so it must not widen the range
	colors := ch
	if colors == 4 {
		colors = 3
	}
	lo, hi := samples[0], samples[0]
	for i := 0; i < n; i++ {
		for c := 0; c < colors; c++ {
			v := samples[i*ch+c]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo == hi {
		// constant frame: leave all zero
		return nil
	}
	scale := 255.0 / float64(hi-lo)

	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			src := c
			if ch == 1 {
				src = 0
			}
			v := samples[i*ch+src]
			out.Pix[i*3+c] = uint8(float64(v-lo) * scale)
		}
	}
	return nil
}

// FromImage classifies a decoded image into a Raw variant and normalizes it.
func FromImage(img image.Image) (*RGB, error) {
	if f, ok := img.(*RGB); ok {
		return f.Clone(), nil
	}
	return Normalize(RawFromImage(img))
}

// RawFromImage maps a decoded image onto the closed set of raw variants.
// Formats without a direct mapping (YCbCr, paletted, CMYK) are converted
// through the 8-bit RGBA colour model.
func RawFromImage(img image.Image) Raw {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		return Raw{Variant: VariantGray8, Width: w, Height: h, Pix: packRows(src.Pix, src.Stride, w, h, 1)}
	case *image.RGBA:
		return Raw{Variant: VariantRGBA8, Width: w, Height: h, Pix: packRows(src.Pix, src.Stride, w, h, 4)}
	case *image.NRGBA:
		return Raw{Variant: VariantRGBA8, Width: w, Height: h, Pix: packRows(src.Pix, src.Stride, w, h, 4)}
	case *image.Gray16:
		return Raw{Variant: VariantDeep, Width: w, Height: h, Channels: 1, Deep: unpack16(src.Pix, src.Stride, w, h, 1)}
	case *image.RGBA64:
		return Raw{Variant: VariantDeep, Width: w, Height: h, Channels: 4, Deep: unpack16(src.Pix, src.Stride, w, h, 4)}
	case *image.NRGBA64:
		return Raw{Variant: VariantDeep, Width: w, Height: h, Channels: 4, Deep: unpack16(src.Pix, src.Stride, w, h, 4)}
	}

	pix := make([]uint8, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			pix[i] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = c.A
			i += 4
		}
	}
	return Raw{Variant: VariantRGBA8, Width: w, Height: h, Pix: pix}
}

// packRows copies an image's rows into a tightly packed buffer.
func packRows(pix []uint8, stride, w, h, bpp int) []uint8 {
	row := w * bpp
	if stride == row {
		return pix[:row*h]
	}
	out := make([]uint8, row*h)
	for y := 0; y < h; y++ {
		copy(out[y*row:(y+1)*row], pix[y*stride:y*stride+row])
	}
	return out
}

// unpack16 reads big-endian 16-bit samples as used by the image package.
func unpack16(pix []uint8, stride, w, h, ch int) []uint16 {
	out := make([]uint16, w*h*ch)
	i := 0
	for y := 0; y < h; y++ {
		row := pix[y*stride:]
		for x := 0; x < w*ch; x++ {
			out[i] = uint16(row[x*2])<<8 | uint16(row[x*2+1])
			i++
		}
	}
	return out
}
