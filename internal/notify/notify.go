// Package notify provides the transient notification sink used by the billing
// logic. Notifications are ephemeral UI toasts: kept in memory for the feed
// endpoint, logged, and never persisted or delivered out-of-band.
package notify

import (
	"log/slog"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier accepts fire-and-forget notification events. It is passed
// explicitly into every component that emits, rather than reached through
// shared global state.
type Notifier interface {
	Notify(message string, severity Severity)
}

// LogNotifier writes notifications to the structured log and nothing else.
// Useful for the periodic sweep, where there is no UI session to toast.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs the notification at a level matching its severity.
func (n *LogNotifier) Notify(message string, severity Severity) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch severity {
	case SeverityError:
		logger.Error("Notification", "message", message, "severity", severity)
	case SeverityWarning:
		logger.Warn("Notification", "message", message, "severity", severity)
	default:
		logger.Info("Notification", "message", message, "severity", severity)
	}
}

// Func adapts a plain function to the Notifier interface.
type Func func(message string, severity Severity)

// Notify calls f.
func (f Func) Notify(message string, severity Severity) {
	f(message, severity)
}
