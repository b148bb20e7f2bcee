package logger

import "github.com/user/reelsync/pkg/ports"

// NoopLogger discards everything. Components fall back to it when no
// logger is supplied, and play --quiet uses it.
type NoopLogger struct{}

// NewNoop returns a logger that discards all messages.
func NewNoop() *NoopLogger { return &NoopLogger{} }

func (*NoopLogger) Debug(string, ...interface{}) {}
func (*NoopLogger) Info(string, ...interface{}) {}
func (*NoopLogger) Warn(string, ...interface{}) {}
func (*NoopLogger) Error(string, ...interface{}) {}

// WithComponent returns l itself.
func (l *NoopLogger) WithComponent(string) ports.Logger { return l }

var _ ports.Logger = (*NoopLogger)(nil)
