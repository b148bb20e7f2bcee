// Package main provides the CLI entry point for reelsync.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"

	"github.com/user/reelsync/pkg/adapters/ggrenderer"
	"github.com/user/reelsync/pkg/adapters/osfilesystem"
	"github.com/user/reelsync/pkg/adapters/smartsource"
	"github.com/user/reelsync/pkg/compositor"
	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Play    PlayCmd    `cmd:"" help:"Play media files side by side."`
	Probe   ProbeCmd   `cmd:"" help:"Show media information."`
	Blend   BlendCmd   `cmd:"" help:"Blend two still images."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// ProbeCmd prints what a decode source reports for a file.
type ProbeCmd struct {
	File        string `arg:"" help:"Media file or image directory."`
	FFmpegPath  string `help:"Path to the ffmpeg executable."`
	FFprobePath string `help:"Path to the ffprobe executable."`
}

// BlendCmd composites two still images.
type BlendCmd struct {
	Main    string  `arg:"" help:"Base image."`
	Overlay string  `arg:"" help:"Image blended on top."`
	Output  string  `short:"o" required:"" help:"Output image path (.png or .jpg)."`
	Mode    string  `short:"m" default:"Normal" help:"Blend mode (Normal, Add, Multiply, Screen, Difference)."`
	Opacity float64 `short:"a" default:"0.5" help:"Overlay opacity from 0 to 1."`
	Quality int     `short:"q" default:"90" help:"JPEG quality from 1 to 100."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("reelsync"),
		kong.Description(l10n.T("Synchronized frame-accurate playback and comparison of video and image sequences")),
		kong.UsageOnError(),
		kong.ValueFormatter(translatedHelp),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// translatedHelp runs flag help through the lexicon before kong's default formatting.
func translatedHelp(value *kong.Value) string {
	v := *value
	v.Help = l10n.T(value.Help)
	return kong.DefaultHelpValueFormatter(&v)
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run() error {
	src := smartsource.New(cmd.File, smartsource.Options{
		FFmpeg: ffmpegOptions(cmd.FFmpegPath, cmd.FFprobePath, nil),
	})
	info, err := src.Open(cmd.File)
	if err != nil {
		return err
	}
	defer src.Close()

	printProbe(os.Stdout, info, smartsource.Detect(cmd.File))
	return nil
}

func printProbe(w io.Writer, info ports.MediaInfo, kind smartsource.Kind) {
	fmt.Fprintf(w, "%-12s %s\n", l10n.T("File"), info.Path)
	fmt.Fprintf(w, "%-12s %s (%s)\n", l10n.T("Kind"), info.Kind, kind)
	if info.Codec != "" {
		fmt.Fprintf(w, "%-12s %s\n", l10n.T("Codec"), info.Codec)
	}
	fmt.Fprintf(w, "%-12s %dx%d (%s)\n", l10n.T("Size"), info.Width, info.Height,
		humanize.SIWithDigits(float64(info.Width*info.Height), 1, "px"))
	fmt.Fprintf(w, "%-12s %s\n", l10n.T("Frames"), humanize.Comma(int64(info.FrameCount)))

	if info.Rate > 0 {
		fmt.Fprintf(w, "%-12s %.3f fps\n", l10n.T("Rate"), info.Rate)
		secs := float64(info.FrameCount) / info.Rate
		fmt.Fprintf(w, "%-12s %s\n", l10n.T("Duration"), time.Duration(secs*float64(time.Second)).Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "%-12s %s\n", l10n.T("Rate"), l10n.T("unknown, playback uses the default"))
	}

	if st, err := os.Stat(info.Path); err == nil && !st.IsDir() {
		fmt.Fprintf(w, "%-12s %s\n", l10n.T("File size"), humanize.Bytes(uint64(st.Size())))
	}
}

// Run executes the blend command.
func (cmd *BlendCmd) Run() error {
	mode, err := compositor.ParseMode(cmd.Mode)
	if err != nil {
		return err
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	load := func(path string) (*frame.RGB, error) {
		data, err := fs.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img, err := renderer.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return frame.FromImage(img)
	}

	base, err := load(cmd.Main)
	if err != nil {
		return err
	}
	over, err := load(cmd.Overlay)
	if err != nil {
		return err
	}

	out := compositor.Blend(base, over, mode, cmd.Opacity)

	data, err := renderer.Encode(out, ports.Encoding{Format: ports.FormatForPath(cmd.Output), Quality: cmd.Quality})
	if err != nil {
		return err
	}
	if err := fs.WriteFile(cmd.Output, data); err != nil {
		return err
	}

	fmt.Println(l10n.F("Output saved to %s", cmd.Output))
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("reelsync version %s", version))
	return nil
}
