package model

import "time"

// ConnectivityKey is the sentinel threshold key used for
// connectivity-failure alerts. Real thresholds are always >= 0.
const ConnectivityKey = -1

// DayFormat is the calendar-day layout used for alert deduplication.
const DayFormat = "2006-01-02"

// Day returns t formatted as a calendar day in t's location.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// TimeRemaining is the parsed online-time state for one device.
// Computed fresh per check and never mutated.
type TimeRemaining struct {
	UsedLabel        string `json:"used_label"`
	TotalLabel       string `json:"total_label"`
	RemainingMinutes int    `json:"remaining_minutes"`
	Exhausted        bool   `json:"exhausted"`
}

// ThresholdRule pairs a remaining-minutes boundary with the message to
// send when it is crossed.
type ThresholdRule struct {
	Minutes int    `json:"minutes" yaml:"minutes" mapstructure:"minutes"`
	Message string `json:"message" yaml:"message" mapstructure:"message"`
}

// Destination is a phone number with its configured threshold rules.
// Admin destinations additionally receive connectivity-failure alerts.
type Destination struct {
	Number     string          `json:"number" yaml:"number" mapstructure:"number"`
	Admin      bool            `json:"admin" yaml:"admin" mapstructure:"admin"`
	Thresholds []ThresholdRule `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
}

// SentAlertRecord marks that one threshold alert went out to a number
// on a given day. At most one record may exist per
// (destination, day, threshold key).
type SentAlertRecord struct {
	ID           string    `json:"id" db:"id"`
	Destination  string    `json:"destination" db:"destination"`
	Day          string    `json:"day" db:"day"`
	ThresholdKey int       `json:"threshold_key" db:"threshold_key"`
	SentAt       time.Time `json:"sent_at" db:"sent_at"`
}

// EventRecord is an operational log entry (check outcomes, send
// failures, connectivity problems).
type EventRecord struct {
	ID        string    `json:"id" db:"id"`
	Event     string    `json:"event" db:"event"`
	Message   string    `json:"message" db:"message"`
	Level     string    `json:"level" db:"level"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// Event names recorded by the watcher.
const (
	EventAlertSent           = "alert_sent"
	EventSendFailed          = "send_failed"
	EventCheckOK             = "check_ok"
	EventConnectivityFailure = "connectivity_failure"
)

// Event levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)
