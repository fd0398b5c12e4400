// Package events feeds message-created events into the fan-out pipeline.
package events

import (
	"context"

	"github.com/berkayemre/chitchat-notify/internal/models"
)

// Handler processes one event. A non-nil error asks the source to
// redeliver; malformed payloads are dropped by the source itself.
type Handler func(ctx context.Context, ev *models.MessageCreatedEvent) error

// Source delivers message-created events to a handler, at least once each,
// until its context is cancelled. Run blocks.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

// Publisher emits a message-created event for consumption by a Source.
type Publisher interface {
	Publish(ctx context.Context, ev *models.MessageCreatedEvent) error
}
