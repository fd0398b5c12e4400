package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the development delivery log.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite delivery log.
// If dbPath is empty, defaults to "./data/deliveries.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/deliveries.db"
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS deliveries (
		id TEXT PRIMARY KEY,
		message_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		recipient_uid TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS deliveries_created_at_idx
		ON deliveries (created_at DESC);
	`)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordDelivery inserts one push attempt.
func (s *SQLiteStore) RecordDelivery(ctx context.Context, d *Delivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, message_id, channel_id, recipient_uid, status, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID.String(), d.MessageID, d.ChannelID, d.RecipientUID, d.Status, d.Error)
	return err
}

// GetStats aggregates the delivery log. The last attempt is read as a
// plain column; aggregate expressions lose the column's declared type and
// come back from the driver as strings.
func (s *SQLiteStore) GetStats(ctx context.Context) (*DeliveryStats, error) {
	stats := &DeliveryStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*),
		       coalesce(sum(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM deliveries
	`).Scan(&stats.Total, &stats.Failed)
	if err != nil {
		return nil, err
	}

	var last time.Time
	err = s.db.QueryRowContext(ctx, `
		SELECT created_at FROM deliveries
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	stats.LastAttempt = &last
	return stats, nil
}

// RecentDeliveries returns the newest attempts, newest first.
func (s *SQLiteStore) RecentDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message_id, channel_id, recipient_uid, status, error, created_at
		FROM deliveries
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		var id string
		if err := rows.Scan(&id, &d.MessageID, &d.ChannelID, &d.RecipientUID,
			&d.Status, &d.Error, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.ID, _ = uuid.Parse(id)
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
