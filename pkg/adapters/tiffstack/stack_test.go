package tiffstack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/user/reelsync/pkg/ports"
)

type page struct {
	width, height int
	bits          int
	pix           []byte // little-endian samples, one channel
}

// buildTIFF writes an uncompressed little-endian grayscale multi-page TIFF.
func buildTIFF(pages []page) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, uint32(0)) // patched below

	var prevNext int
	for i, p := range pages {
		dataOff := buf.Len()
		buf.Write(p.pix)
		if buf.Len()%2 == 1 {
			buf.WriteByte(0)
		}
		ifdOff := buf.Len()

		out := buf.Bytes()
		if i == 0 {
			le.PutUint32(out[4:8], uint32(ifdOff))
		} else {
			le.PutUint32(out[prevNext:prevNext+4], uint32(ifdOff))
		}

		entries := []struct {
			tag, typ uint16
			val      uint32
		}{
			{256, 4, uint32(p.width)},
			{257, 4, uint32(p.height)},
			{258, 3, uint32(p.bits)},
			{259, 3, 1},
			{262, 3, 1},
			{273, 4, uint32(dataOff)},
			{277, 3, 1},
			{278, 4, uint32(p.height)},
			{279, 4, uint32(len(p.pix))},
		}
		binary.Write(&buf, le, uint16(len(entries)))
		for _, e := range entries {
			binary.Write(&buf, le, e.tag)
			binary.Write(&buf, le, e.typ)
			binary.Write(&buf, le, uint32(1))
			if e.typ == 3 {
				binary.Write(&buf, le, uint16(e.val))
				binary.Write(&buf, le, uint16(0))
			} else {
				binary.Write(&buf, le, e.val)
			}
		}
		prevNext = buf.Len()
		binary.Write(&buf, le, uint32(0))
	}
	return buf.Bytes()
}

func gray8Page(w, h int, v byte) page {
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = v
	}
	return page{width: w, height: h, bits: 8, pix: pix}
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stack.tif")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStack_ReadsPagesInAnyOrder(t *testing.T) {
	path := writeTemp(t, buildTIFF([]page{
		gray8Page(3, 2, 10),
		gray8Page(3, 2, 20),
		gray8Page(3, 2, 30),
	}))

	s := New()
	defer s.Close()
	info, err := s.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if info.FrameCount != 3 || info.Kind != ports.KindFrameStack {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Width != 3 || info.Height != 2 {
		t.Errorf("expected 3x2, got %dx%d", info.Width, info.Height)
	}
	if info.Rate != 0 {
		t.Errorf("TIFF carries no rate, got %v", info.Rate)
	}

	for _, idx := range []int{2, 0, 1, 2} {
		f, err := s.Read(idx)
		if err != nil {
			t.Fatalf("Read(%d) failed: %v", idx, err)
		}
		want := uint8(10 * (idx + 1))
		r, g, b := f.Pixel(2, 1)
		if r != want || g != want || b != want {
			t.Errorf("page %d: expected gray %d, got (%d,%d,%d)", idx, want, r, g, b)
		}
	}
}

func TestStack_DeepPageIsRescaled(t *testing.T) {
	pix := make([]byte, 4)
	binary.LittleEndian.PutUint16(pix[0:], 1000)
	binary.LittleEndian.PutUint16(pix[2:], 3000)
	path := writeTemp(t, buildTIFF([]page{{width: 2, height: 1, bits: 16, pix: pix}}))

	s := New()
	defer s.Close()
	if _, err := s.Open(path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	f, err := s.Read(0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	lo, _, _ := f.Pixel(0, 0)
	hi, _, _ := f.Pixel(1, 0)
	if lo != 0 || hi != 255 {
		t.Errorf("expected min/max to map to 0/255, got %d/%d", lo, hi)
	}
}

func TestStack_DeepRGBPageIgnoresAlpha(t *testing.T) {
	// 12-bit camera data stored as 16-bit RGBA with opaque alpha
	img := image.NewRGBA64(image.Rect(0, 0, 2, 1))
	img.SetRGBA64(0, 0, color.RGBA64{A: 0xffff})
	img.SetRGBA64(1, 0, color.RGBA64{R: 4095, G: 4095, B: 4095, A: 0xffff})
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	path := writeTemp(t, buf.Bytes())

	s := New()
	defer s.Close()
	if _, err := s.Open(path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	f, err := s.Read(0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if r, g, b := f.Pixel(0, 0); r != 0 || g != 0 || b != 0 {
		t.Errorf("expected black at x=0, got (%d,%d,%d)", r, g, b)
	}
	if r, g, b := f.Pixel(1, 0); r != 255 || g != 255 || b != 255 {
		t.Errorf("expected brightest pixel to map to white, got (%d,%d,%d)", r, g, b)
	}
}

func TestStack_OutOfRange(t *testing.T) {
	path := writeTemp(t, buildTIFF([]page{gray8Page(1, 1, 1)}))
	s := New()
	defer s.Close()
	if _, err := s.Open(path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read(1); !errors.Is(err, ErrPageRange) {
		t.Errorf("expected ErrPageRange, got %v", err)
	}
	if _, err := s.Read(-1); !errors.Is(err, ErrPageRange) {
		t.Errorf("expected ErrPageRange, got %v", err)
	}
}

func TestStack_RejectsNonTIFF(t *testing.T) {
	path := writeTemp(t, []byte("\x89PNG\r\n\x1a\nrest"))
	if _, err := New().Open(path); !errors.Is(err, ErrNotTIFF) {
		t.Errorf("expected ErrNotTIFF, got %v", err)
	}

	if _, err := New().Open(filepath.Join(t.TempDir(), "missing.tif")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWalkPages_StopsOnCycle(t *testing.T) {
	data := buildTIFF([]page{gray8Page(1, 1, 1), gray8Page(1, 1, 2)})
	first := binary.LittleEndian.Uint32(data[4:8])
	// Point the last IFD's next pointer back at the first
	binary.LittleEndian.PutUint32(data[len(data)-4:], first)

	_, pages, err := walkPages(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("walkPages failed: %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("expected 2 pages, got %d", len(pages))
	}
}

func TestSupported(t *testing.T) {
	if !Supported("a.TIF") || !Supported("b.tiff") || Supported("c.gif") {
		t.Error("unexpected extension classification")
	}
}
