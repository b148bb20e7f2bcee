// Package lognotifier reports user-facing errors through a Logger.
package lognotifier

import (
	"sync"

	"github.com/user/reelsync/pkg/ports"
)

// Notifier implements ports.Notifier by logging at error level.
// It also remembers the last message for status output.
type Notifier struct {
	logger ports.Logger

	mu   sync.Mutex
	last string
	n    int
}

// New creates a notifier that writes to logger.
func New(logger ports.Logger) *Notifier {
	return &Notifier{logger: logger.WithComponent("notify")}
}

// ReportError logs message.
func (n *Notifier) ReportError(message string) {
	n.mu.Lock()
	n.last = message
	n.n++
	n.mu.Unlock()
	n.logger.Error("Error: %s", message)
}

// Last returns the most recent message and the total reported.
func (n *Notifier) Last() (string, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last, n.n
}

var _ ports.Notifier = (*Notifier)(nil)
