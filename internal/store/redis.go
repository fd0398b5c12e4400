package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/berkayemre/chitchat-notify/internal/metrics"
	"github.com/berkayemre/chitchat-notify/internal/models"
)

const (
	// Seen sets bound duplicate-trigger detection; after this window a
	// redelivered event could double-count, which is acceptable for events
	// that stale.
	seenTTL = 24 * time.Hour

	// Attempts before an unread increment gives up under contention.
	maxCounterRetries = 16
)

// ErrCounterContention is returned when an unread increment keeps losing
// optimistic transactions.
var ErrCounterContention = errors.New("unread counter: too much contention")

// RedisStore is the client for the realtime store: channel and user
// directories, unread counters and auth nonce tracking.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for the event stream source.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func channelKey(channelID string) string {
	return fmt.Sprintf("channels:%s", channelID)
}

func userKey(uid string) string {
	return fmt.Sprintf("users:%s", uid)
}

func messageKey(channelID, messageID string) string {
	return fmt.Sprintf("channel-messages:%s:%s", channelID, messageID)
}

// unreadKey holds the per-user-per-channel unread count.
func unreadKey(uid, channelID string) string {
	return fmt.Sprintf("user-channels:%s:%s", uid, channelID)
}

// seenKey holds the message ids already counted for (uid, channel).
func seenKey(uid, channelID string) string {
	return fmt.Sprintf("user-channels:%s:%s:seen", uid, channelID)
}

func nonceKey(callerID, nonce string) string {
	return fmt.Sprintf("nonce:%s:%s", callerID, nonce)
}

// GetChannel reads a channel record. Returns (nil, nil) when absent.
func (s *RedisStore) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	data, err := s.client.Get(ctx, channelKey(channelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ch models.Channel
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, fmt.Errorf("channel %s: %w", channelID, err)
	}
	ch.ID = channelID
	return &ch, nil
}

// GetUser reads a user record. Returns (nil, nil) when absent.
func (s *RedisStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	data, err := s.client.Get(ctx, userKey(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("user %s: %w", uid, err)
	}
	u.UID = uid
	return &u, nil
}

// AddMessage stores a message record at its channel-messages path.
func (s *RedisStore) AddMessage(ctx context.Context, msg *models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, messageKey(msg.ChannelID, msg.ID), data, 0).Err()
}

// IncrementUnread bumps the unread count for (uid, channelID) by one, keyed
// on messageID so that duplicate trigger deliveries are no-ops. The
// read-modify-write runs inside a WATCH transaction and retries on
// concurrent modification. Returns the count after the update.
func (s *RedisStore) IncrementUnread(ctx context.Context, uid, channelID, messageID string) (int64, error) {
	countKey := unreadKey(uid, channelID)
	dedupeKey := seenKey(uid, channelID)

	var count int64
	txf := func(tx *redis.Tx) error {
		seen, err := tx.SIsMember(ctx, dedupeKey, messageID).Result()
		if err != nil {
			return err
		}

		cur, err := tx.Get(ctx, countKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if seen {
			count = cur
			return nil
		}
		count = cur + 1

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, countKey, count, 0)
			pipe.SAdd(ctx, dedupeKey, messageID)
			pipe.Expire(ctx, dedupeKey, seenTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxCounterRetries; i++ {
		err := s.client.Watch(ctx, txf, countKey, dedupeKey)
		if err == nil {
			metrics.UnreadIncrements.Inc()
			return count, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			metrics.CounterConflicts.Inc()
			continue
		}
		return 0, err
	}
	return 0, ErrCounterContention
}

// ResetUnread sets the unread count for (uid, channelID) to zero. Invoked
// when the user opens the channel; idempotent.
func (s *RedisStore) ResetUnread(ctx context.Context, uid, channelID string) error {
	return s.client.Set(ctx, unreadKey(uid, channelID), 0, 0).Err()
}

// GetUnread reads the current unread count. Absent keys read as zero.
func (s *RedisStore) GetUnread(ctx context.Context, uid, channelID string) (int64, error) {
	count, err := s.client.Get(ctx, unreadKey(uid, channelID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

// IsNonceUsed checks if a caller nonce has been seen before.
func (s *RedisStore) IsNonceUsed(ctx context.Context, callerID, nonce string) bool {
	exists, _ := s.client.Exists(ctx, nonceKey(callerID, nonce)).Result()
	return exists > 0
}

// MarkNonceUsed records a caller nonce with a TTL.
func (s *RedisStore) MarkNonceUsed(ctx context.Context, callerID, nonce string, ttl time.Duration) {
	s.client.Set(ctx, nonceKey(callerID, nonce), "1", ttl)
}
