// Package smartsource selects a decode source variant from the media path.
package smartsource

import (
	"os"

	"github.com/user/reelsync/pkg/adapters/ffmpegsource"
	"github.com/user/reelsync/pkg/adapters/imagestack"
	"github.com/user/reelsync/pkg/adapters/osfilesystem"
	"github.com/user/reelsync/pkg/adapters/tiffstack"
	"github.com/user/reelsync/pkg/ports"
)

// Kind identifies the source variant chosen for a path.
type Kind string

const (
	// KindDirectory is a directory of still images.
	KindDirectory Kind = "directory"
	// KindTIFF is a multi-page TIFF.
	KindTIFF Kind = "tiff"
	// KindGIF is an animated GIF.
	KindGIF Kind = "gif"
	// KindVideo is anything else, decoded through ffmpeg.
	KindVideo Kind = "video"
)

// Options configures the variants.
type Options struct {
	// FileSystem backs image stacks. Defaults to the OS file system.
	FileSystem ports.FileSystem
	// FFmpeg configures the video variant.
	FFmpeg ffmpegsource.Options
}

// Detect classifies path without opening it.
func Detect(path string) Kind {
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return KindDirectory
	}
	switch {
	case tiffstack.Supported(path):
		return KindTIFF
	case imagestack.IsGIF(path):
		return KindGIF
	}
	return KindVideo
}

// New creates an unopened source for path.
func New(path string, opts Options) ports.DecodeSource {
	fs := opts.FileSystem
	if fs == nil {
		fs = osfilesystem.New()
	}
	switch Detect(path) {
	case KindDirectory, KindGIF:
		return imagestack.New(fs)
	case KindTIFF:
		return tiffstack.New()
	}
	return ffmpegsource.New(opts.FFmpeg)
}

// Factory returns a ports.SourceFactory that picks the variant per path.
func Factory(opts Options) ports.SourceFactory {
	return func(path string) (ports.DecodeSource, error) {
		return New(path, opts), nil
	}
}
