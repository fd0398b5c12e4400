package events

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/berkayemre/chitchat-notify/internal/metrics"
	"github.com/berkayemre/chitchat-notify/internal/models"
)

const (
	// DefaultStream is where message writes are published as events.
	DefaultStream = "channel-messages:events"

	// DefaultGroup is the consumer group for this service. Entries are
	// acked only after the handler succeeds, so a crashed consumer's
	// pending entries are re-read on restart: at-least-once delivery.
	DefaultGroup = "notify"

	readCount = 16
	readBlock = 5 * time.Second
)

// StreamSource consumes message-created events from a Redis Stream
// consumer group.
type StreamSource struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	log      zerolog.Logger
}

// NewStreamSource creates a stream source with a host-unique consumer name.
func NewStreamSource(client *redis.Client, log zerolog.Logger) *StreamSource {
	host, _ := os.Hostname()
	if host == "" {
		host = "notify"
	}
	return &StreamSource{
		client:   client,
		stream:   DefaultStream,
		group:    DefaultGroup,
		consumer: host + "-" + uuid.NewString()[:8],
		log:      log,
	}
}

// Run consumes until ctx is cancelled. This consumer's own pending entries
// (left over from a previous crash under the same name, or unacked reads)
// are drained before new entries.
func (s *StreamSource) Run(ctx context.Context, h Handler) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}

	s.log.Info().
		Str("stream", s.stream).
		Str("group", s.group).
		Str("consumer", s.consumer).
		Msg("stream source started")

	// "0" reads this consumer's pending entries; ">" reads new ones.
	cursor := "0"
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{s.stream, cursor},
			Count:    readCount,
			Block:    readBlock,
		}).Result()
		if errors.Is(err, redis.Nil) {
			cursor = ">"
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error().Err(err).Msg("stream read failed")
			time.Sleep(time.Second)
			continue
		}

		delivered := 0
		for _, stream := range res {
			for _, entry := range stream.Messages {
				delivered++
				s.handleEntry(ctx, h, entry)
			}
		}
		if cursor == "0" && delivered == 0 {
			// Pending backlog drained, switch to new entries.
			cursor = ">"
		}
	}
}

func (s *StreamSource) handleEntry(ctx context.Context, h Handler, entry redis.XMessage) {
	payload, _ := entry.Values["payload"].(string)
	ev, err := models.DecodeMessageCreated([]byte(payload))
	if err != nil {
		// Permanently malformed; ack so it is not redelivered forever.
		s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("dropping malformed event")
		metrics.EventsConsumed.WithLabelValues("stream", "malformed").Inc()
		s.ack(ctx, entry.ID)
		return
	}

	if err := h(ctx, ev); err != nil {
		// Leave unacked; the entry stays pending and is redelivered.
		s.log.Error().Err(err).
			Str("message_id", ev.MessageID).
			Msg("event handling failed, will redeliver")
		metrics.EventsConsumed.WithLabelValues("stream", "error").Inc()
		return
	}

	metrics.EventsConsumed.WithLabelValues("stream", "ok").Inc()
	s.ack(ctx, entry.ID)
}

func (s *StreamSource) ack(ctx context.Context, entryID string) {
	if err := s.client.XAck(ctx, s.stream, s.group, entryID).Err(); err != nil {
		s.log.Error().Err(err).Str("entry_id", entryID).Msg("ack failed")
	}
}

// StreamPublisher writes message-created events to the stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher creates a publisher for the default stream.
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client, stream: DefaultStream}
}

// Publish appends one event.
func (p *StreamPublisher) Publish(ctx context.Context, ev *models.MessageCreatedEvent) error {
	data, err := ev.Encode()
	if err != nil {
		return err
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"payload": string(data)},
	}).Err()
}
