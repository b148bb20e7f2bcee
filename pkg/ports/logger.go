// Package ports defines the interfaces between the playback core and its
// collaborators: decode sources, displays, schedulers, logging and storage.
package ports

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLogLevel is returned by ParseLogLevel.
var ErrUnknownLogLevel = errors.New("ports: unknown log level")

// LogLevel orders message severity. A logger writes messages at or above its level.
type LogLevel int

const (
	// LevelDebug covers per-frame and per-seek detail from loaders and viewers.
	LevelDebug LogLevel = iota
	// LevelInfo covers session-level events such as files opened and sync toggled.
	LevelInfo
	// LevelWarn covers problems playback survives, like a stale seek poll giving up.
	LevelWarn
	// LevelError covers terminal open and decode failures.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = [...]string{"debug", "info", "warn", "error", "quiet"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLogLevel resolves a level name, ignoring case. "warning" is accepted
// for warn. The empty string is info.
func ParseLogLevel(s string) (LogLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}
	for i, name := range levelNames {
		if s == name {
			return LogLevel(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, s)
}

// Logger takes printf-style messages whose format string is also the
// translation key.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that tags messages with the component name.
	WithComponent(component string) Logger
}
