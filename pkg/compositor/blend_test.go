package compositor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/reelsync/pkg/frame"
)

func solid(w, h int, v uint8) *frame.RGB {
	f := frame.NewRGB(w, h)
	f.Fill(v, v, v)
	return f
}

func TestBlend_ModesAtHalfOpacity(t *testing.T) {
	main := solid(2, 2, 100)
	overlay := solid(2, 2, 200)

	// Per-channel results of the mode formulas for m=100, o=200, α=0.5.
	tests := []struct {
		mode Mode
		want uint8
	}{
		{Normal, 150},     // 0.5·100 + 0.5·200
		{Add, 200},        // 100 + 0.5·200
		{Multiply, 89},    // 100·(0.5 + 0.5·200/255) = 89.2
		{Screen, 161},     // 255 − 155·(0.5 + 0.5·55/255) = 160.8
		{Difference, 100}, // 0.5·100 + 0.5·|100−200|
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			out := Blend(main, overlay, tt.mode, 0.5)
			for i, v := range out.Pix {
				if v != tt.want {
					t.Fatalf("pix[%d]: expected %d, got %d", i, tt.want, v)
				}
			}
		})
	}
}

func TestBlend_ClampsToByteRange(t *testing.T) {
	out := Blend(solid(1, 1, 250), solid(1, 1, 250), Add, 1)
	require.Equal(t, uint8(255), out.Pix[0])
}

func TestBlend_OpacityExtremes(t *testing.T) {
	main := solid(1, 1, 40)
	overlay := solid(1, 1, 220)

	for _, mode := range Modes() {
		out := Blend(main, overlay, mode, 0)
		require.Equal(t, uint8(40), out.Pix[0], "%s at α=0 must keep main", mode)
	}
	require.Equal(t, uint8(220), Blend(main, overlay, Normal, 1).Pix[0])
	require.Equal(t, uint8(220), Blend(main, overlay, Normal, 7).Pix[0], "α clamps to 1")
	require.Equal(t, uint8(180), Blend(main, overlay, Difference, 1).Pix[0])
}

func TestBlend_PartialOverlap(t *testing.T) {
	main := solid(100, 80, 100)
	overlay := solid(60, 120, 200)

	out := Blend(main, overlay, Normal, 0.5)
	require.Equal(t, 100, out.Width)
	require.Equal(t, 80, out.Height)

	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 150},
		{59, 79, 150},
		{60, 0, 100}, // right of the overlay
		{99, 79, 100},
	}
	for _, tt := range tests {
		r, g, b := out.Pixel(tt.x, tt.y)
		if r != tt.want || g != tt.want || b != tt.want {
			t.Errorf("(%d,%d): expected %d, got (%d,%d,%d)", tt.x, tt.y, tt.want, r, g, b)
		}
	}
}

func TestBlend_DoesNotModifyInputs(t *testing.T) {
	main := solid(2, 1, 10)
	overlay := solid(2, 1, 20)
	Blend(main, overlay, Add, 1)
	require.Equal(t, uint8(10), main.Pix[0])
	require.Equal(t, uint8(20), overlay.Pix[0])
}

func TestBlend_PerChannel(t *testing.T) {
	main := frame.NewRGB(1, 1)
	main.SetPixel(0, 0, 0, 128, 255)
	overlay := frame.NewRGB(1, 1)
	overlay.SetPixel(0, 0, 255, 128, 0)

	out := Blend(main, overlay, Difference, 1)
	r, g, b := out.Pixel(0, 0)
	require.Equal(t, [3]uint8{255, 0, 255}, [3]uint8{r, g, b})
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
	got, err := ParseMode("screen")
	require.NoError(t, err)
	require.Equal(t, Screen, got)

	_, err = ParseMode("overlay")
	require.ErrorIs(t, err, ErrUnknownMode)
	require.Equal(t, "Mode(9)", Mode(9).String())
}

func TestQuantizeOpacity(t *testing.T) {
	tests := []struct {
		alpha, step, want float64
	}{
		{0.46, 0.1, 0.5},
		{0.44, 0.1, 0.4},
		{1.3, 0.1, 1},
		{-1, 0.1, 0},
		{0.37, 0, 0.37},
	}
	for _, tt := range tests {
		require.InDelta(t, tt.want, QuantizeOpacity(tt.alpha, tt.step), 1e-9)
	}
}
