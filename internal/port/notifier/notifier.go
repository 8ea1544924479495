// Package notifier defines the port for team alerts sent to chat and mail.
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a notifier has no destination.
var ErrNotConfigured = errors.New("notifier: not configured")

// Alert levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Field is a labelled value shown alongside the message.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Notification is the payload sent through a Notifier.
type Notification struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Level   string  `json:"level"`
	Source  string  `json:"source"` // queue subject, e.g. "clients.booked"
	URL     string  `json:"url,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
}

// Notifier delivers alerts to one channel.
type Notifier interface {
	// Name identifies the channel, e.g. "slack" or "email".
	Name() string

	// Send delivers a notification.
	Send(ctx context.Context, n Notification) error
}
