package alerts

import (
	"context"
	"fmt"
	"io"
)

// ConsoleNotifier writes messages to w instead of sending them. Used
// for dry runs.
type ConsoleNotifier struct {
	w io.Writer
}

// NewConsoleNotifier creates a notifier writing to w.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

func (c *ConsoleNotifier) Name() string { return "console" }

func (c *ConsoleNotifier) Send(_ context.Context, number, message string) error {
	_, err := fmt.Fprintf(c.w, "[dry-run] %s: %s\n", number, message)
	return err
}
