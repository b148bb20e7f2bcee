package compositor

import (
	"fmt"
	"math"
	"strings"

	"github.com/user/reelsync/pkg/frame"
)

// Mode is a per-channel blend algebra.
type Mode int

const (
	Normal Mode = iota
	Add
	Multiply
	Screen
	Difference
)

var modeNames = [...]string{"Normal", "Add", "Multiply", "Screen", "Difference"}

// Modes lists every blend mode in display order.
func Modes() []Mode {
	return []Mode{Normal, Add, Multiply, Screen, Difference}
}

// String returns the mode name.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode resolves a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return Normal, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Blend composites overlay onto main and returns a new frame the size of
// main. The overlay is aligned at the top-left corner; only the
// min(width) × min(height) overlap is blended and the rest keeps main's
// pixels. alpha is clamped to [0,1].
func Blend(main, overlay *frame.RGB, mode Mode, alpha float64) *frame.RGB {
	out := main.Clone()
	if overlay == nil {
		return out
	}
	a := clamp01(alpha)
	w := min(main.Width, overlay.Width)
	h := min(main.Height, overlay.Height)
	op := channelOp(mode)

	for y := 0; y < h; y++ {
		mi := main.Offset(0, y)
		oi := overlay.Offset(0, y)
		for x := 0; x < w*frame.BytesPerPixel; x++ {
			out.Pix[mi+x] = toByte(op(float64(main.Pix[mi+x]), float64(overlay.Pix[oi+x]), a))
		}
	}
	return out
}

func channelOp(mode Mode) func(m, o, a float64) float64 {
	switch mode {
	case Add:
		return func(m, o, a float64) float64 { return m + a*o }
	case Multiply:
		return func(m, o, a float64) float64 { return m * (1 - a + a*o/255) }
	case Screen:
		return func(m, o, a float64) float64 { return 255 - (255-m)*(1-a+a*(255-o)/255) }
	case Difference:
		return func(m, o, a float64) float64 { return (1-a)*m + a*math.Abs(m-o) }
	default:
		return func(m, o, a float64) float64 { return (1-a)*m + a*o }
	}
}

func toByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// QuantizeOpacity snaps alpha to the nearest multiple of step, as a slider
// with that resolution would. A non-positive step only clamps.
func QuantizeOpacity(alpha, step float64) float64 {
	a := clamp01(alpha)
	if step <= 0 {
		return a
	}
	return clamp01(math.Round(a/step) * step)
}
