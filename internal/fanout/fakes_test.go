package fanout

import (
	"context"
	"fmt"
	"sync"

	"github.com/berkayemre/chitchat-notify/internal/models"
	"github.com/berkayemre/chitchat-notify/internal/push"
	"github.com/berkayemre/chitchat-notify/internal/store"
)

type memDirectory struct {
	channels map[string]*models.Channel
	users    map[string]*models.User
	userErr  map[string]error

	mu        sync.Mutex
	userReads map[string]int
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		channels:  make(map[string]*models.Channel),
		users:     make(map[string]*models.User),
		userErr:   make(map[string]error),
		userReads: make(map[string]int),
	}
}

func (d *memDirectory) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	return d.channels[channelID], nil
}

func (d *memDirectory) GetUser(ctx context.Context, uid string) (*models.User, error) {
	d.mu.Lock()
	d.userReads[uid]++
	d.mu.Unlock()
	if err := d.userErr[uid]; err != nil {
		return nil, err
	}
	return d.users[uid], nil
}

type memCounters struct {
	mu     sync.Mutex
	counts map[string]int64
	seen   map[string]bool
}

func newMemCounters() *memCounters {
	return &memCounters{
		counts: make(map[string]int64),
		seen:   make(map[string]bool),
	}
}

func counterKey(uid, channelID string) string {
	return uid + "|" + channelID
}

func (c *memCounters) IncrementUnread(ctx context.Context, uid, channelID, messageID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := counterKey(uid, channelID)
	seenKey := key + "|" + messageID
	if c.seen[seenKey] {
		return c.counts[key], nil
	}
	c.seen[seenKey] = true
	c.counts[key]++
	return c.counts[key], nil
}

func (c *memCounters) ResetUnread(ctx context.Context, uid, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[counterKey(uid, channelID)] = 0
	return nil
}

func (c *memCounters) GetUnread(ctx context.Context, uid, channelID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[counterKey(uid, channelID)], nil
}

type sentPush struct {
	token string
	n     push.Notification
}

type memSink struct {
	mu         sync.Mutex
	sends      []sentPush
	failTokens map[string]bool
}

func newMemSink() *memSink {
	return &memSink{failTokens: make(map[string]bool)}
}

func (s *memSink) Send(ctx context.Context, token string, n *push.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTokens[token] {
		return fmt.Errorf("send to %s: gateway rejected", token)
	}
	s.sends = append(s.sends, sentPush{token: token, n: *n})
	return nil
}

func (s *memSink) sent() []sentPush {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentPush, len(s.sends))
	copy(out, s.sends)
	return out
}

type memDeliveries struct {
	mu      sync.Mutex
	records []store.Delivery
}

func (m *memDeliveries) Close()                               {}
func (m *memDeliveries) Ping(ctx context.Context) error       { return nil }
func (m *memDeliveries) RecordDelivery(ctx context.Context, d *store.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *d)
	return nil
}

func (m *memDeliveries) GetStats(ctx context.Context) (*store.DeliveryStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &store.DeliveryStats{Total: int64(len(m.records))}
	for _, d := range m.records {
		if d.Status == store.DeliveryFailed {
			stats.Failed++
		}
	}
	return stats, nil
}

func (m *memDeliveries) RecentDeliveries(ctx context.Context, limit int) ([]store.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Delivery, len(m.records))
	copy(out, m.records)
	return out, nil
}
