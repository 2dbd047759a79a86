package alerts

import "context"

// Decision is one notification the engine selected for sending.
type Decision struct {
	Number       string `json:"number"`
	Message      string `json:"message"`
	ThresholdKey int    `json:"threshold_key"`
}

// DedupOracle reports whether an alert with the given threshold key was
// already recorded as sent to destination on the given day.
type DedupOracle func(ctx context.Context, destination, day string, thresholdKey int) (bool, error)

// Notifier delivers a text message to a destination number.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers message to the number. A returned error means the
	// message must be treated as not sent.
	Send(ctx context.Context, number, message string) error
}
