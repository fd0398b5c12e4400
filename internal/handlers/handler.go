package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/berkayemre/chitchat-notify/internal/events"
	"github.com/berkayemre/chitchat-notify/internal/fanout"
	"github.com/berkayemre/chitchat-notify/internal/models"
	"github.com/berkayemre/chitchat-notify/internal/push"
	"github.com/berkayemre/chitchat-notify/internal/store"
)

// Error kinds surfaced to callers, matching the client SDK's expectations.
const (
	KindFailedPrecondition = "failed-precondition"
	KindInvalidArgument    = "invalid-argument"
	KindAborted            = "aborted"
	KindInternal           = "internal"
)

// MessageStore persists message records on the ingest path.
type MessageStore interface {
	AddMessage(ctx context.Context, msg *models.Message) error
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	redis      *store.RedisStore
	messages   MessageStore
	counters   fanout.Counters
	deliveries store.DeliveryStore // may be nil
	sink       push.Sink
	publisher  events.Publisher
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(redis *store.RedisStore, counters fanout.Counters, deliveries store.DeliveryStore, sink push.Sink, publisher events.Publisher) *Handler {
	return &Handler{
		redis:      redis,
		messages:   redis,
		counters:   counters,
		deliveries: deliveries,
		sink:       sink,
		publisher:  publisher,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a structured JSON error with a kind the caller can act on.
func (h *Handler) Error(w http.ResponseWriter, status int, kind, message string) {
	h.JSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"kind":    kind,
			"message": message,
		},
	})
}
