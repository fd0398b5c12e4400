package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the Postgres-backed delivery log.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a delivery log with a connection pool and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS deliveries (
			id UUID PRIMARY KEY,
			message_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			recipient_uid TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS deliveries_created_at_idx
			ON deliveries (created_at DESC);
	`)
	return err
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// RecordDelivery inserts one push attempt.
func (s *PostgresStore) RecordDelivery(ctx context.Context, d *Delivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO deliveries (id, message_id, channel_id, recipient_uid, status, error)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.MessageID, d.ChannelID, d.RecipientUID, d.Status, d.Error)
	return err
}

// GetStats aggregates the delivery log.
func (s *PostgresStore) GetStats(ctx context.Context) (*DeliveryStats, error) {
	stats := &DeliveryStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'failed'),
		       max(created_at)
		FROM deliveries
	`).Scan(&stats.Total, &stats.Failed, &stats.LastAttempt)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentDeliveries returns the newest attempts, newest first.
func (s *PostgresStore) RecentDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, message_id, channel_id, recipient_uid, status, error, created_at
		FROM deliveries
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.MessageID, &d.ChannelID, &d.RecipientUID,
			&d.Status, &d.Error, &d.CreatedAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
