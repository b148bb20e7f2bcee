package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/reelsync/pkg/adapters/ffmpegsource"
	"github.com/user/reelsync/pkg/adapters/ggrenderer"
	"github.com/user/reelsync/pkg/adapters/logger"
	"github.com/user/reelsync/pkg/adapters/nulldisplay"
	"github.com/user/reelsync/pkg/adapters/osfilesystem"
	"github.com/user/reelsync/pkg/adapters/smartsource"
	"github.com/user/reelsync/pkg/adapters/snapshotdisplay"
	"github.com/user/reelsync/pkg/config"
	"github.com/user/reelsync/pkg/eventloop"
	"github.com/user/reelsync/pkg/ports"
	"github.com/user/reelsync/pkg/session"
	"github.com/user/reelsync/pkg/summarizer"
)

// loadPollInterval paces the wait for every viewer's first frame.
const loadPollInterval = 20 * time.Millisecond

// PlayCmd runs a headless playback session.
type PlayCmd struct {
	Files  []string `arg:"" help:"Media files or image directories."`
	Config string   `short:"c" type:"existingfile" help:"YAML configuration file."`

	// Playback
	Sync     *bool         `help:"Synchronize playback across viewers."`
	Rate     *float64      `short:"r" help:"Frame rate applied to every viewer after loading."`
	Speed    *float64      `short:"s" help:"Speed multiplier applied to every viewer after loading."`
	Duration time.Duration `short:"t" help:"Stop after this long (0 runs until interrupted)."`
	Control  bool          `help:"Read console commands from stdin."`

	// Overlay
	OverlayMain int      `help:"Slot of the viewer that shows the blend."`
	Overlay     int      `help:"Slot of the viewer blended on top."`
	Blend       *string  `short:"b" help:"Blend mode (Normal, Add, Multiply, Screen, Difference)."`
	Opacity     *float64 `short:"a" help:"Overlay opacity from 0 to 1."`

	// Output
	SnapshotDir   string `help:"Directory for PNG snapshots of displayed frames."`
	SnapshotEvery *int   `help:"Write one snapshot every N frames."`
	Report        string `help:"Write a Markdown playback summary to this file (- for stdout)."`

	// Decoding
	FFmpegPath  string `help:"Path to the ffmpeg executable."`
	FFprobePath string `help:"Path to the ffprobe executable."`

	// Logging options
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// Run executes the play command.
func (cmd *PlayCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		level, _ := ports.ParseLogLevel(cfg.LogLevel) // checked by Validate
		log = logger.NewConsole(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cmd.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, cmd.Duration)
		defer cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	loop := eventloop.New()
	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	newDisplay := func(slot int, path string) ports.Display {
		if cfg.SnapshotDir == "" {
			return nulldisplay.New()
		}
		return snapshotdisplay.New(renderer, fs, log, snapshotdisplay.Options{
			Dir:    cfg.SnapshotDir,
			Prefix: strconv.Itoa(slot),
			Every:  cfg.SnapshotEvery,
			Theme: snapshotdisplay.Theme{
				CaptionHeight: cfg.Snapshot.CaptionHeight,
				FontSize:      cfg.Snapshot.FontSize,
				FontPath:      cfg.Snapshot.FontPath,
				Background:    config.ParseColor(cfg.Snapshot.BackgroundColor),
				TextColor:     config.ParseColor(cfg.Snapshot.TextColor),
			},
		})
	}

	sess, err := session.New(session.Deps{
		Factory: smartsource.Factory(smartsource.Options{
			FileSystem: fs,
			FFmpeg:     ffmpegOptions(cfg.FFmpegPath, cfg.FFprobePath, log),
		}),
		Scheduler:  loop,
		NewDisplay: newDisplay,
		Logger:     log,
		Out:        os.Stdout,
	}, cfg.ToSessionOptions())
	if err != nil {
		return err
	}

	started := time.Now()
	var openErr error
	loop.Post(func() {
		_, openErr = sess.Open(cmd.Files...)
		if openErr != nil {
			cancel()
		}
	})

	go cmd.afterLoad(ctx, loop, sess, log)
	if cmd.Control {
		go cmd.readCommands(ctx, cancel, loop, sess)
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// The loop has stopped, so the session is only touched from here on.
	if openErr == nil {
		sess.WriteStatus()
		if cmd.Report != "" {
			cmd.writeReport(fs, sess, time.Since(started), log)
		}
	}
	sess.CloseAll()
	return openErr
}

// writeReport saves the playback summary. A failed write is logged, not fatal.
func (cmd *PlayCmd) writeReport(fs ports.FileSystem, sess *session.Session, elapsed time.Duration, log ports.Logger) {
	translate := func(s string) string { return l10n.T(s) }
	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(summarizer.WithTranslator(translate)), fs, os.Stdout)
	if err := w.Write(cmd.Report, summarizer.FromSession(sess, elapsed)); err != nil {
		log.Warn("Failed to write report %s: %v", cmd.Report, err)
		return
	}
	if cmd.Report != summarizer.StdoutPath {
		log.Info("Wrote report %s", cmd.Report)
	}
}

// afterLoad applies rate, speed and overlay flags once every viewer has
// reported its media, since loading resets the rate to the medium's own.
func (cmd *PlayCmd) afterLoad(ctx context.Context, loop *eventloop.Loop, sess *session.Session, log ports.Logger) {
	ticker := time.NewTicker(loadPollInterval)
	defer ticker.Stop()

	for {
		loaded := false
		if err := loop.Call(ctx, func() {
			loaded = sess.Len() > 0
			for _, v := range sess.Viewers() {
				if !v.Snapshot().Loaded {
					loaded = false
				}
			}
		}); err != nil {
			return
		}
		if loaded {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	_ = loop.Call(ctx, func() {
		for _, v := range sess.Viewers() {
			if cmd.Rate != nil {
				if err := v.SetRate(*cmd.Rate); err != nil {
					log.Warn("%v", err)
				}
			}
			if cmd.Speed != nil {
				if err := v.SetSpeed(*cmd.Speed); err != nil {
					log.Warn("%v", err)
				}
			}
		}
		if cmd.OverlayMain > 0 && cmd.Overlay > 0 {
			line := fmt.Sprintf("overlay %d %d", cmd.OverlayMain, cmd.Overlay)
			if err := sess.Execute(line); err != nil {
				log.Warn("%v", err)
			}
		}
	})
}

// readCommands feeds stdin lines to the session until stdin closes.
func (cmd *PlayCmd) readCommands(ctx context.Context, cancel context.CancelFunc, loop *eventloop.Loop, sess *session.Session) {
	defer cancel()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "quit" || line == "exit" {
			return
		}
		if err := loop.Call(ctx, func() {
			if err := sess.Execute(line); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}); err != nil {
			return
		}
	}
}

// buildConfig layers flag overrides on the file or default configuration.
func (cmd *PlayCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if cmd.Sync != nil {
		cfg.Sync = *cmd.Sync
	}
	if cmd.Blend != nil {
		cfg.BlendMode = *cmd.Blend
	}
	if cmd.Opacity != nil {
		cfg.Opacity = *cmd.Opacity
	}
	if cmd.SnapshotDir != "" {
		cfg.SnapshotDir = cmd.SnapshotDir
	}
	if cmd.SnapshotEvery != nil {
		cfg.SnapshotEvery = *cmd.SnapshotEvery
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	if cmd.FFprobePath != "" {
		cfg.FFprobePath = cmd.FFprobePath
	}
	if cmd.LogLevel != "" {
		cfg.LogLevel = cmd.LogLevel
	}

	return cfg, cfg.Validate()
}

func ffmpegOptions(ffmpegPath, ffprobePath string, log ports.Logger) ffmpegsource.Options {
	return ffmpegsource.Options{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		Logger:      log,
	}
}
