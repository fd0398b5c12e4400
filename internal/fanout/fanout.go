// Package fanout turns one message-created event into per-recipient push
// sends and unread counter updates.
package fanout

import (
	"context"

	"github.com/berkayemre/chitchat-notify/internal/models"
)

// Directory provides read access to the channel and user records owned by
// the realtime store. Getters return (nil, nil) for absent records.
type Directory interface {
	GetChannel(ctx context.Context, channelID string) (*models.Channel, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// Counters tracks per-user-per-channel unread counts. IncrementUnread is
// keyed on message id so duplicate event deliveries do not double-count.
type Counters interface {
	IncrementUnread(ctx context.Context, uid, channelID, messageID string) (int64, error)
	ResetUnread(ctx context.Context, uid, channelID string) error
	GetUnread(ctx context.Context, uid, channelID string) (int64, error)
}

// Recipient is one user to notify. UserID is empty when the token came from
// a client-supplied list.
type Recipient struct {
	UserID string
	Token  string
}
