// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/reelsync/pkg/compositor"
	"github.com/user/reelsync/pkg/player"
	"github.com/user/reelsync/pkg/ports"
	"github.com/user/reelsync/pkg/session"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config represents the full configuration for reelsync.
type Config struct {
	// Buffering
	BufferCapacity int `yaml:"buffer_capacity"`
	PollIntervalMs int `yaml:"poll_interval_ms"`

	// Playback
	DefaultRate        float64 `yaml:"default_rate"`
	SeekInitialDelayMs int     `yaml:"seek_initial_delay_ms"`
	SeekRetries        int     `yaml:"seek_retries"`
	SeekRetryDelayMs   int     `yaml:"seek_retry_delay_ms"`
	Sync               bool    `yaml:"sync"`

	// Overlay
	BlendMode   string  `yaml:"blend_mode"`
	Opacity     float64 `yaml:"opacity"`
	OpacityStep float64 `yaml:"opacity_step"`

	// Decoding
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Snapshots
	SnapshotDir   string        `yaml:"snapshot_dir"`
	SnapshotEvery int           `yaml:"snapshot_every"`
	Snapshot      SnapshotTheme `yaml:"snapshot_theme"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// SnapshotTheme styles the caption strip drawn under snapshot frames.
type SnapshotTheme struct {
	CaptionHeight   int     `yaml:"caption_height"`
	FontSize        float64 `yaml:"font_size"`
	FontPath        string  `yaml:"font_path"`
	BackgroundColor string  `yaml:"background_color"`
	TextColor       string  `yaml:"text_color"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		BufferCapacity: 30,
		PollIntervalMs: 10,

		DefaultRate:        30,
		SeekInitialDelayMs: 100,
		SeekRetries:        5,
		SeekRetryDelayMs:   50,

		BlendMode:   "Normal",
		Opacity:     0.5,
		OpacityStep: 0.1,

		SnapshotEvery: 30,
		Snapshot: SnapshotTheme{
			CaptionHeight:   24,
			FontSize:        14,
			BackgroundColor: "#1a1a2e",
			TextColor:       "#ffffff",
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	if c.BufferCapacity <= 0 {
		problems = append(problems, "buffer_capacity must be positive")
	}
	if c.DefaultRate <= 0 {
		problems = append(problems, "default_rate must be positive")
	}
	if c.PollIntervalMs < 0 || c.SeekInitialDelayMs < 0 || c.SeekRetryDelayMs < 0 {
		problems = append(problems, "intervals must not be negative")
	}
	if c.SeekRetries < 0 {
		problems = append(problems, "seek_retries must not be negative")
	}
	if _, err := compositor.ParseMode(c.BlendMode); err != nil {
		problems = append(problems, "unknown blend_mode "+strconv.Quote(c.BlendMode))
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		problems = append(problems, "opacity must be within [0,1]")
	}
	if c.SnapshotEvery < 0 {
		problems = append(problems, "snapshot_every must not be negative")
	}
	if _, err := ports.ParseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, "unknown log_level "+strconv.Quote(c.LogLevel))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ToPlayerOptions converts Config to player.Options.
func (c Config) ToPlayerOptions() player.Options {
	return player.Options{
		BufferCapacity:   c.BufferCapacity,
		PollInterval:     ms(c.PollIntervalMs),
		DefaultRate:      c.DefaultRate,
		SeekInitialDelay: ms(c.SeekInitialDelayMs),
		SeekRetries:      c.SeekRetries,
		SeekRetryDelay:   ms(c.SeekRetryDelayMs),
	}
}

// ToSessionOptions converts Config to session.Options.
// BlendMode must already be valid; unknown names fall back to Normal.
func (c Config) ToSessionOptions() session.Options {
	mode, _ := compositor.ParseMode(c.BlendMode)
	return session.Options{
		Player:      c.ToPlayerOptions(),
		Sync:        c.Sync,
		Mode:        mode,
		Opacity:     compositor.QuantizeOpacity(c.Opacity, c.OpacityStep),
		OpacityStep: c.OpacityStep,
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// ParseColor parses a hex color string ("#rrggbb" or "rrggbb") to color.Color.
// Malformed input yields black.
func ParseColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.Black
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
