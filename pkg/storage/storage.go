package storage

import (
	"context"
	"time"

	"github.com/dkemper/fritzwatch/pkg/model"
)

// Storage defines the persistence layer for sent alerts and events.
//
// Writes must be visible to queries before the call returns; the
// watcher's dedup check in the next invocation relies on that.
type Storage interface {
	// RecordSentAlert persists that an alert with thresholdKey went out
	// to destination on day.
	RecordSentAlert(ctx context.Context, destination, day string, thresholdKey int, sentAt time.Time) error

	// WasAlertSent reports whether an alert with thresholdKey was
	// already recorded for destination on day.
	WasAlertSent(ctx context.Context, destination, day string, thresholdKey int) (bool, error)

	// ListSentAlerts returns the most recent sent alerts, newest first.
	ListSentAlerts(ctx context.Context, limit int) ([]model.SentAlertRecord, error)

	// RecordEvent appends an operational log entry.
	RecordEvent(ctx context.Context, event, message, level string, timestamp time.Time) error

	// ListEvents returns the most recent events, newest first.
	ListEvents(ctx context.Context, limit int) ([]model.EventRecord, error)

	// Close releases resources.
	Close() error
}
