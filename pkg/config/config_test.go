package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/reelsync/pkg/compositor"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.BufferCapacity != 30 {
		t.Errorf("expected buffer capacity 30, got %d", cfg.BufferCapacity)
	}
	if cfg.SeekRetries != 5 || cfg.SeekInitialDelayMs != 100 || cfg.SeekRetryDelayMs != 50 {
		t.Errorf("unexpected seek defaults: %+v", cfg)
	}
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelsync.yaml")
	data := []byte(`
buffer_capacity: 12
default_rate: 24
sync: true
blend_mode: screen
opacity: 0.34
snapshot_theme:
  text_color: "#ff0000"
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.BufferCapacity != 12 || cfg.DefaultRate != 24 || !cfg.Sync {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.PollIntervalMs != 10 {
		t.Errorf("expected default poll interval to survive, got %d", cfg.PollIntervalMs)
	}
	if cfg.Snapshot.BackgroundColor != "#1a1a2e" {
		t.Errorf("expected nested default to survive, got %q", cfg.Snapshot.BackgroundColor)
	}

	opts := cfg.ToSessionOptions()
	if opts.Mode != compositor.Screen {
		t.Errorf("expected Screen, got %s", opts.Mode)
	}
	if opts.Opacity < 0.299 || opts.Opacity > 0.301 {
		t.Errorf("expected opacity quantized to 0.3, got %v", opts.Opacity)
	}
	if opts.Player.BufferCapacity != 12 {
		t.Errorf("expected player capacity 12, got %d", opts.Player.BufferCapacity)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("buffer_capacity: [1, 2"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	os.WriteFile(path, []byte("buffer_capacity: 0\n"), 0644)
	if _, err := LoadFromFile(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.BufferCapacity = 0 }},
		{"negative rate", func(c *Config) { c.DefaultRate = -1 }},
		{"unknown mode", func(c *Config) { c.BlendMode = "Overlay" }},
		{"opacity above one", func(c *Config) { c.Opacity = 1.5 }},
		{"negative delay", func(c *Config) { c.SeekRetryDelayMs = -5 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestToPlayerOptions(t *testing.T) {
	opts := Defaults().ToPlayerOptions()
	if opts.PollInterval != 10*time.Millisecond {
		t.Errorf("expected 10ms poll, got %v", opts.PollInterval)
	}
	if opts.SeekInitialDelay != 100*time.Millisecond || opts.SeekRetryDelay != 50*time.Millisecond {
		t.Errorf("unexpected seek timing: %+v", opts)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#1a1a2e", color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 255}},
		{"FFFFFF", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#fff", color.Black},
		{"zzzzzz", color.Black},
		{"", color.Black},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
