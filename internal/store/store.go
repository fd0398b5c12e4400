package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Delivery is one push send attempt, recorded for auditing and stats.
type Delivery struct {
	ID           uuid.UUID `json:"id"`
	MessageID    string    `json:"message_id"`
	ChannelID    string    `json:"channel_id"`
	RecipientUID string    `json:"recipient_uid,omitempty"` // empty for client-resolved tokens
	Status       string    `json:"status"`                  // "sent" or "failed"
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Delivery statuses.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// DeliveryStats aggregates the delivery log.
type DeliveryStats struct {
	Total       int64
	Failed      int64
	LastAttempt *time.Time
}

// DeliveryStore records push attempts. Both PostgresStore and SQLiteStore
// implement this interface.
type DeliveryStore interface {
	Close()
	Ping(ctx context.Context) error

	RecordDelivery(ctx context.Context, d *Delivery) error
	GetStats(ctx context.Context) (*DeliveryStats, error)
	RecentDeliveries(ctx context.Context, limit int) ([]Delivery, error)
}
