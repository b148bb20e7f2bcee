package mocks

import (
	"fmt"
	"sync"

	"github.com/user/reelsync/pkg/ports"
)

// Logger records formatted messages by level.
type Logger struct {
	mu        sync.Mutex
	entries   []LogEntry
	component string
	root      *Logger
}

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     string
	Component string
	Message   string
}

func (m *Logger) record(level, format string, args ...interface{}) {
	root := m
	if m.root != nil {
		root = m.root
	}
	root.mu.Lock()
	defer root.mu.Unlock()
	root.entries = append(root.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (m *Logger) Debug(format string, args ...interface{}) { m.record("DEBUG", format, args...) }
func (m *Logger) Info(format string, args ...interface{}) { m.record("INFO", format, args...) }
func (m *Logger) Warn(format string, args ...interface{}) { m.record("WARN", format, args...) }
func (m *Logger) Error(format string, args ...interface{}) { m.record("ERROR", format, args...) }

func (m *Logger) WithComponent(component string) ports.Logger {
	root := m
	if m.root != nil {
		root = m.root
	}
	return &Logger{component: component, root: root}
}

// Entries returns every recorded entry, including those of derived loggers.
func (m *Logger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), m.entries...)
}

// Messages returns the messages recorded at level.
func (m *Logger) Messages(level string) []string {
	var out []string
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

var _ ports.Logger = (*Logger)(nil)
