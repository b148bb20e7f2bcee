// Package logger provides the console and no-op ports.Logger implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/reelsync/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// sink is shared by a logger and every component logger derived from it.
// Loaders log from their own goroutines, so each line is written under mu.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	color  bool
}

func (s *sink) writeLine(level ports.LogLevel, line string) {
	w := s.out
	if level >= ports.LevelWarn {
		w = s.errOut
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(w, line)
}

// ConsoleLogger writes translated messages to stdout, with warnings and
// errors going to stderr.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	sink      *sink
}

// NewConsole creates a console logger. Color is enabled when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stdout.Fd()
	return &ConsoleLogger{
		level: level,
		sink: &sink{
			out:    os.Stdout,
			errOut: os.Stderr,
			color:  isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		},
	}
}

// NewConsoleWriter creates an uncoloured console logger writing info and
// below to out, and warnings and errors to errOut.
func NewConsoleWriter(level ports.LogLevel, out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{level: level, sink: &sink{out: out, errOut: errOut}}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.log(ports.LevelDebug, msg, args) }

func (l *ConsoleLogger) Info(msg string, args ...interface{}) { l.log(ports.LevelInfo, msg, args) }

func (l *ConsoleLogger) Warn(msg string, args ...interface{}) { l.log(ports.LevelWarn, msg, args) }

func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log(ports.LevelError, msg, args) }

// WithComponent returns a logger that tags lines with component and writes
// to the same streams.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	return &ConsoleLogger{level: l.level, component: component, sink: l.sink}
}

// Enabled reports whether messages at level are written.
func (l *ConsoleLogger) Enabled(level ports.LogLevel) bool {
	return level >= l.level && l.level < ports.LevelQuiet
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args []interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.sink.writeLine(level, l.format(level, l10n.F(msg, args...)))
}

func (l *ConsoleLogger) format(level ports.LogLevel, text string) string {
	if !l.sink.color {
		if l.component == "" {
			return text
		}
		return "[" + l.component + "] " + text
	}

	if l.component != "" {
		text = colorCyan + "[" + l.component + "]" + colorReset + " " + text
	}
	switch level {
	case ports.LevelDebug:
		return colorGray + text + colorReset
	case ports.LevelWarn:
		return colorYellow + text + colorReset
	case ports.LevelError:
		return colorRed + text + colorReset
	}
	return text
}

var _ ports.Logger = (*ConsoleLogger)(nil)
