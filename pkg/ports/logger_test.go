package ports

import (
	"errors"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"quiet", LevelQuiet},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.in, tt.want, got)
		}
	}

	if _, err := ParseLogLevel("verbose"); !errors.Is(err, ErrUnknownLogLevel) {
		t.Errorf("expected ErrUnknownLogLevel, got %v", err)
	}
}

func TestLogLevel_String(t *testing.T) {
	if LevelWarn.String() != "warn" {
		t.Errorf("expected warn, got %s", LevelWarn)
	}
	if LogLevel(42).String() != "LogLevel(42)" {
		t.Errorf("unexpected name for out-of-range level: %s", LogLevel(42))
	}
}
