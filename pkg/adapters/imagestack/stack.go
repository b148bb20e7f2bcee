// Package imagestack reads still-image sequences as random-access frame
// stacks: a directory of images sorted by name, or an animated GIF.
package imagestack

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

var (
	// ErrEmptyStack is returned when a directory holds no decodable images.
	ErrEmptyStack = errors.New("imagestack: no images")
	// ErrFrameRange is returned for reads outside the stack.
	ErrFrameRange = errors.New("imagestack: frame out of range")
)

// gifCentiseconds converts GIF delay units to frames per second.
const gifCentiseconds = 100.0

var stillExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsGIF reports whether path names a GIF file.
func IsGIF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gif")
}

// Stack is a ports.DecodeSource over still images.
type Stack struct {
	fs     ports.FileSystem
	files  []string     // directory mode
	frames []*frame.RGB // GIF mode, composited at open
	info   ports.MediaInfo
}

// New creates an unopened Stack reading through fs.
func New(fs ports.FileSystem) *Stack {
	return &Stack{fs: fs}
}

// Open indexes a directory or composites an animated GIF.
func (s *Stack) Open(path string) (ports.MediaInfo, error) {
	if IsGIF(path) {
		return s.openGIF(path)
	}
	return s.openDir(path)
}

func (s *Stack) openDir(dir string) (ports.MediaInfo, error) {
	names, err := s.fs.ReadDir(dir)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, name := range names {
		if stillExts[strings.ToLower(filepath.Ext(name))] {
			files = append(files, filepath.Join(dir, name))
		}
	}
	if len(files) == 0 {
		return ports.MediaInfo{}, fmt.Errorf("%w: %s", ErrEmptyStack, dir)
	}

	data, err := s.fs.ReadFile(files[0])
	if err != nil {
		return ports.MediaInfo{}, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("decode %s: %w", files[0], err)
	}

	s.files = files
	s.frames = nil
	s.info = ports.MediaInfo{
		Path:       dir,
		Kind:       ports.KindFrameStack,
		FrameCount: len(files),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Codec:      format,
	}
	return s.info, nil
}

func (s *Stack) openGIF(path string) (ports.MediaInfo, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return ports.MediaInfo{}, err
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return ports.MediaInfo{}, fmt.Errorf("%w: %s", ErrEmptyStack, path)
	}

	frames, err := composite(g)
	if err != nil {
		return ports.MediaInfo{}, err
	}

	s.files = nil
	s.frames = frames
	s.info = ports.MediaInfo{
		Path:       path,
		Kind:       ports.KindFrameStack,
		FrameCount: len(frames),
		Rate:       gifRate(g.Delay),
		Width:      frames[0].Width,
		Height:     frames[0].Height,
		Codec:      "gif",
	}
	return s.info, nil
}

// composite renders each GIF frame onto a running canvas, honouring the
// per-frame disposal method before the next frame is drawn.
func composite(g *gif.GIF) ([]*frame.RGB, error) {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)

	out := make([]*frame.RGB, 0, len(g.Image))
	for i, img := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var saved *image.RGBA
		if disposal == gif.DisposalPrevious {
			saved = image.NewRGBA(bounds)
			draw.Draw(saved, bounds, canvas, bounds.Min, draw.Src)
		}

		draw.Draw(canvas, img.Bounds(), img, img.Bounds().Min, draw.Over)
		f, err := frame.FromImage(canvas)
		if err != nil {
			return nil, fmt.Errorf("gif frame %d: %w", i, err)
		}
		out = append(out, f)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			draw.Draw(canvas, bounds, saved, bounds.Min, draw.Src)
		}
	}
	return out, nil
}

// gifRate derives a nominal rate from the mean frame delay.
func gifRate(delays []int) float64 {
	total := 0
	for _, d := range delays {
		total += d
	}
	if total <= 0 {
		return 0
	}
	return gifCentiseconds * float64(len(delays)) / float64(total)
}

// Read decodes frame index.
func (s *Stack) Read(index int) (*frame.RGB, error) {
	if index < 0 || index >= s.info.FrameCount {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameRange, index, s.info.FrameCount)
	}
	if s.frames != nil {
		return s.frames[index].Clone(), nil
	}

	data, err := s.fs.ReadFile(s.files[index])
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.files[index], err)
	}
	return frame.FromImage(img)
}

// Close drops composited frames.
func (s *Stack) Close() error {
	s.frames = nil
	s.files = nil
	s.info = ports.MediaInfo{}
	return nil
}

var _ ports.DecodeSource = (*Stack)(nil)
