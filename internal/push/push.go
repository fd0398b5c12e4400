// Package push delivers composed notifications to device tokens.
package push

import (
	"context"

	"github.com/rs/zerolog"
)

// Notification is the platform-neutral payload handed to a delivery sink.
type Notification struct {
	Title string
	Body  string
	Sound string // "default" unless overridden
	Badge int    // app icon badge count
}

// Sink sends a notification to a single device token. Sends are best-effort:
// a failed send returns an error for the caller to log, never to retry.
type Sink interface {
	Send(ctx context.Context, token string, n *Notification) error
}

// DropSink discards every send. Used when FCM credentials are not
// configured, so the fan-out pipeline still runs end to end in development.
type DropSink struct {
	Logger zerolog.Logger
}

func (s DropSink) Send(ctx context.Context, token string, n *Notification) error {
	s.Logger.Debug().
		Str("title", n.Title).
		Msg("push disabled, dropping notification")
	return nil
}
