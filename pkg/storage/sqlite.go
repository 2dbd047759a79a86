package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dkemper/fritzwatch/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) RecordSentAlert(ctx context.Context, destination, day string, thresholdKey int, sentAt time.Time) error {
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sent_alerts (id, destination, day, threshold_key, sent_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), destination, day, thresholdKey, sentAt,
	)
	if err != nil {
		return fmt.Errorf("insert sent alert: %w", err)
	}
	return nil
}

func (s *SQLite) WasAlertSent(ctx context.Context, destination, day string, thresholdKey int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sent_alerts WHERE destination = ? AND day = ? AND threshold_key = ?`,
		destination, day, thresholdKey,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query sent alert: %w", err)
	}
	return count > 0, nil
}

func (s *SQLite) ListSentAlerts(ctx context.Context, limit int) ([]model.SentAlertRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, destination, day, threshold_key, sent_at
		 FROM sent_alerts ORDER BY sent_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sent alerts: %w", err)
	}
	defer rows.Close()

	var records []model.SentAlertRecord
	for rows.Next() {
		var r model.SentAlertRecord
		if err := rows.Scan(&r.ID, &r.Destination, &r.Day, &r.ThresholdKey, &r.SentAt); err != nil {
			return nil, fmt.Errorf("scan sent alert row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) RecordEvent(ctx context.Context, event, message, level string, timestamp time.Time) error {
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	if level == "" {
		level = model.LevelInfo
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, event, message, level, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), event, message, level, timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLite) ListEvents(ctx context.Context, limit int) ([]model.EventRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event, message, level, timestamp
		 FROM events ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var records []model.EventRecord
	for rows.Next() {
		var r model.EventRecord
		if err := rows.Scan(&r.ID, &r.Event, &r.Message, &r.Level, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
