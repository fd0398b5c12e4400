package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/berkayemre/chitchat-notify/internal/metrics"
	"github.com/berkayemre/chitchat-notify/internal/models"
	"github.com/berkayemre/chitchat-notify/internal/push"
	"github.com/berkayemre/chitchat-notify/internal/store"
)

// Dispatcher handles message-created events: it resolves recipients,
// composes and sends pushes, and bumps unread counters. One dispatcher
// serves all events; invocations are independent and may run concurrently.
type Dispatcher struct {
	dir        Directory
	counters   Counters
	sink       push.Sink
	deliveries store.DeliveryStore // may be nil
	resolver   *Resolver
	log        zerolog.Logger

	// LiveBadge sets each push badge to the recipient's post-increment
	// unread count instead of the fixed constant.
	liveBadge bool
}

// New creates a dispatcher.
func New(dir Directory, counters Counters, sink push.Sink, deliveries store.DeliveryStore, log zerolog.Logger, liveBadge bool) *Dispatcher {
	return &Dispatcher{
		dir:        dir,
		counters:   counters,
		sink:       sink,
		deliveries: deliveries,
		resolver:   NewResolver(dir, log),
		log:        log,
		liveBadge:  liveBadge,
	}
}

// Handle processes one event. A non-nil error means a transient failure
// before fan-out started (directory read), and the event should be
// redelivered. Per-recipient failures are contained: they are logged and
// recorded, never returned.
func (d *Dispatcher) Handle(ctx context.Context, ev *models.MessageCreatedEvent) error {
	start := time.Now()
	defer func() {
		metrics.FanoutDuration.Observe(time.Since(start).Seconds())
	}()

	msg := &ev.Message
	log := d.log.With().
		Str("message_id", msg.ID).
		Str("channel_id", msg.ChannelID).
		Logger()

	// Admin messages are channel bookkeeping: no push, no unread bump.
	if msg.IsAdmin() {
		log.Debug().Msg("admin message, nothing to notify")
		return nil
	}

	ch, err := d.dir.GetChannel(ctx, msg.ChannelID)
	if err != nil {
		return err
	}

	sender, err := d.dir.GetUser(ctx, msg.OwnerUID)
	if err != nil {
		return err
	}

	// Unread counters always follow membership; the token strategy only
	// affects push recipient resolution.
	var counts map[string]int64
	var wg sync.WaitGroup
	if d.liveBadge {
		// Badges need the post-increment counts, so bump before sending.
		counts = d.bumpCounters(ctx, msg, ch, log)
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.bumpCounters(ctx, msg, ch, log)
		}()
	}

	// Only the badge varies per recipient; compose the payload once.
	base := Compose(msg, ch, sender, DefaultBadge)

	for _, rcpt := range d.resolver.Resolve(ctx, msg, ch) {
		n := *base
		if d.liveBadge {
			if c, ok := counts[rcpt.UserID]; ok && c > 0 {
				n.Badge = int(c)
			}
		}

		sendErr := d.sink.Send(ctx, rcpt.Token, &n)
		if sendErr != nil {
			// Best-effort: log and move on to the next recipient.
			log.Error().Err(sendErr).
				Str("recipient_uid", rcpt.UserID).
				Msg("push send failed")
			metrics.PushesSent.WithLabelValues("error").Inc()
		} else {
			metrics.PushesSent.WithLabelValues("ok").Inc()
		}
		d.recordDelivery(ctx, msg, rcpt, sendErr, log)
	}

	wg.Wait()
	return nil
}

// bumpCounters increments the unread count of every member except the
// sender, returning the post-increment counts by uid. Failures affect only
// that member's counter.
func (d *Dispatcher) bumpCounters(ctx context.Context, msg *models.Message, ch *models.Channel, log zerolog.Logger) map[string]int64 {
	counts := make(map[string]int64)
	if ch == nil {
		return counts
	}

	for _, uid := range ch.MembersUids {
		if uid == msg.OwnerUID {
			continue
		}
		count, err := d.counters.IncrementUnread(ctx, uid, msg.ChannelID, msg.ID)
		if err != nil {
			log.Error().Err(err).
				Str("uid", uid).
				Msg("unread increment failed")
			continue
		}
		counts[uid] = count
	}
	return counts
}

func (d *Dispatcher) recordDelivery(ctx context.Context, msg *models.Message, rcpt Recipient, sendErr error, log zerolog.Logger) {
	if d.deliveries == nil {
		return
	}

	delivery := &store.Delivery{
		MessageID:    msg.ID,
		ChannelID:    msg.ChannelID,
		RecipientUID: rcpt.UserID,
		Status:       store.DeliverySent,
	}
	if sendErr != nil {
		delivery.Status = store.DeliveryFailed
		delivery.Error = sendErr.Error()
	}

	if err := d.deliveries.RecordDelivery(ctx, delivery); err != nil {
		// The log is an audit aid, never worth failing fan-out over.
		log.Debug().Err(err).Msg("delivery record write failed")
	}
}
