package events

import (
	"context"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/berkayemre/chitchat-notify/internal/metrics"
	"github.com/berkayemre/chitchat-notify/internal/models"
)

const (
	amqpExchange   = "chitchat.events"
	amqpQueue      = "chitchat.notify"
	amqpRoutingKey = "message.created"

	amqpPrefetch = 10
	amqpWorkers  = 4

	handlerTimeout = 30 * time.Second
)

// AMQPSource consumes message-created events from the platform's RabbitMQ
// topic exchange. Used by deployments that publish message writes through
// the broker instead of the Redis stream.
type AMQPSource struct {
	url string
	log zerolog.Logger
}

// NewAMQPSource creates an AMQP source.
func NewAMQPSource(url string, log zerolog.Logger) *AMQPSource {
	return &AMQPSource{url: url, log: log}
}

// Run consumes until ctx is cancelled. Deliveries are acked when the
// handler succeeds, nacked with requeue on transient failure, and nacked
// without requeue when permanently malformed.
func (s *AMQPSource) Run(ctx context.Context, h Handler) error {
	conn, err := amqp091.Dial(s.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(amqpExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.Qos(amqpPrefetch, 0, false); err != nil {
		return err
	}
	q, err := ch.QueueDeclare(amqpQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	if err := ch.QueueBind(q.Name, amqpRoutingKey, amqpExchange, false, nil); err != nil {
		return err
	}
	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	s.log.Info().
		Str("exchange", amqpExchange).
		Str("queue", q.Name).
		Msg("amqp source started")

	var wg sync.WaitGroup
	for i := 0; i < amqpWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						return
					}
					s.handleDelivery(ctx, h, d)
				}
			}
		}()
	}

	<-ctx.Done()
	// Closing the channel ends Consume and unblocks the workers.
	_ = ch.Close()
	wg.Wait()
	return ctx.Err()
}

func (s *AMQPSource) handleDelivery(ctx context.Context, h Handler, d amqp091.Delivery) {
	ev, err := models.DecodeMessageCreated(d.Body)
	if err != nil {
		s.log.Error().Err(err).Msg("dropping malformed event")
		metrics.EventsConsumed.WithLabelValues("amqp", "malformed").Inc()
		_ = d.Nack(false, false)
		return
	}

	hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	err = h(hctx, ev)
	cancel()
	if err != nil {
		s.log.Error().Err(err).
			Str("message_id", ev.MessageID).
			Msg("event handling failed, requeueing")
		metrics.EventsConsumed.WithLabelValues("amqp", "error").Inc()
		_ = d.Nack(false, true)
		return
	}

	metrics.EventsConsumed.WithLabelValues("amqp", "ok").Inc()
	_ = d.Ack(false)
}
