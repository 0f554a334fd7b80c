package notify

import (
	"github.com/photogallery/server/internal/observability"
)

// Notifier surfaces user-facing feedback for gallery operations. The stores
// call it after every mutation so connected clients see toasts without
// polling.
type Notifier interface {
	ShowSuccess(message string)
	ShowError(message string)
}

// LogNotifier writes notifications to the structured log. It is the fallback
// when no client transport is wired, and the capture point in tests.
type LogNotifier struct {
	logger *observability.Logger
}

func NewLogNotifier(logger *observability.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ShowSuccess(message string) {
	n.logger.WithField("kind", "success").Info(message)
}

func (n *LogNotifier) ShowError(message string) {
	n.logger.WithField("kind", "error").Error(message)
}

// MultiNotifier fans a notification out to several sinks.
type MultiNotifier []Notifier

func (m MultiNotifier) ShowSuccess(message string) {
	for _, n := range m {
		n.ShowSuccess(message)
	}
}

func (m MultiNotifier) ShowError(message string) {
	for _, n := range m {
		n.ShowError(message)
	}
}
