// Package ffmpegsource decodes video containers sequentially through an
// external ffmpeg process streaming rawvideo rgb24 over a pipe.
package ffmpegsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/user/reelsync/pkg/adapters/logger"
	"github.com/user/reelsync/pkg/adapters/mp4probe"
	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg or ffprobe cannot be located.
	ErrFFmpegNotFound = errors.New("ffmpegsource: ffmpeg not found")
	// ErrNoVideoStream is returned when ffprobe reports no video stream.
	ErrNoVideoStream = errors.New("ffmpegsource: no video stream")
	// ErrNotOpen is returned by Read before a successful Open.
	ErrNotOpen = errors.New("ffmpegsource: source not open")
)

// Options configures tool discovery.
type Options struct {
	FFmpegPath  string
	FFprobePath string
	Logger      ports.Logger
}

// Source is a ports.DecodeSource backed by ffmpeg.
// Random access is emulated: reading behind the stream position restarts
// the process and reading ahead discards frames until the target.
type Source struct {
	opts    Options
	log     ports.Logger
	ffmpeg  string
	info    ports.MediaInfo
	frameSz int

	cmd    *exec.Cmd
	cancel context.CancelFunc
	pipe   io.ReadCloser
	next   int
	buf    []byte

	interrupted func() bool
}

// New creates an unopened Source.
func New(opts Options) *Source {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	return &Source{opts: opts, log: log.WithComponent("ffmpeg")}
}

// Factory returns a ports.SourceFactory producing ffmpeg sources.
func Factory(opts Options) ports.SourceFactory {
	return func(path string) (ports.DecodeSource, error) {
		return New(opts), nil
	}
}

// Open probes the container and locates ffmpeg.
// Frame count and rate come from the MP4 box tree when the container is
// MP4-family, and from ffprobe otherwise; dimensions always come from ffprobe.
func (s *Source) Open(path string) (ports.MediaInfo, error) {
	ffmpegPath, err := FindTool("ffmpeg", s.opts.FFmpegPath)
	if err != nil {
		return ports.MediaInfo{}, err
	}
	ffprobePath, err := FindTool("ffprobe", s.opts.FFprobePath)
	if err != nil {
		return ports.MediaInfo{}, err
	}

	stream, err := Probe(context.Background(), ffprobePath, path)
	if err != nil {
		return ports.MediaInfo{}, err
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return ports.MediaInfo{}, fmt.Errorf("%w: %s reports %dx%d", ErrNoVideoStream, path, stream.Width, stream.Height)
	}

	info := ports.MediaInfo{
		Path:       path,
		Kind:       ports.KindVideo,
		FrameCount: stream.FrameCount(),
		Rate:       stream.Rate(),
		Width:      stream.Width,
		Height:     stream.Height,
		Codec:      stream.CodecName,
	}

	if mp4probe.Supported(path) {
		if boxes, err := mp4probe.ProbeFile(path); err == nil && boxes.FrameCount > 0 {
			info.FrameCount = boxes.FrameCount
			if r := boxes.Rate(); r > 0 {
				info.Rate = r
			}
		} else if err != nil {
			s.log.Debug("MP4 box probe of %s failed: %v", path, err)
		}
	}

	s.close()
	s.ffmpeg = ffmpegPath
	s.info = info
	s.frameSz = info.Width * info.Height * frame.BytesPerPixel
	s.buf = make([]byte, s.frameSz)
	s.next = 0
	return info, nil
}

// Read decodes the frame at index.
func (s *Source) Read(index int) (*frame.RGB, error) {
	if s.ffmpeg == "" {
		return nil, ErrNotOpen
	}
	if s.pipe == nil || index < s.next {
		if err := s.restart(); err != nil {
			return nil, err
		}
	}

	for s.next < index {
		if s.interrupted != nil && s.interrupted() {
			return nil, fmt.Errorf("%w: skipping to frame %d at %d", ports.ErrInterrupted, index, s.next)
		}
		if err := s.readRaw(); err != nil {
			return nil, err
		}
	}
	if err := s.readRaw(); err != nil {
		return nil, err
	}

	return frame.Normalize(frame.Raw{
		Variant: frame.VariantRGB8,
		Width:   s.info.Width,
		Height:  s.info.Height,
		Pix:     s.buf,
	})
}

// SetInterrupt installs a check polled between frames while Read skips ahead.
func (s *Source) SetInterrupt(stop func() bool) {
	s.interrupted = stop
}

func (s *Source) readRaw() error {
	if _, err := io.ReadFull(s.pipe, s.buf); err != nil {
		s.close()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ports.ErrEndOfSequence
		}
		return fmt.Errorf("read frame %d: %w", s.next, err)
	}
	s.next++
	return nil
}

func (s *Source) restart() error {
	s.close()

	ctx, cancel := context.WithCancel(context.Background())
	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, s.ffmpeg,
		"-v", "error",
		"-i", s.info.Path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	cmd.Stderr = &stderr

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	s.cmd = cmd
	s.cancel = cancel
	s.pipe = pipe
	s.next = 0
	return nil
}

func (s *Source) close() {
	if s.cmd == nil {
		return
	}
	s.cancel()
	// The process is killed by the context, so Wait only reaps it.
	_ = s.cmd.Wait()
	s.cmd = nil
	s.cancel = nil
	s.pipe = nil
}

// Close stops any running ffmpeg process.
func (s *Source) Close() error {
	s.close()
	return nil
}

var (
	_ ports.DecodeSource  = (*Source)(nil)
	_ ports.Interruptible = (*Source)(nil)
)
