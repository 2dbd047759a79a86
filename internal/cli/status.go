package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dkemper/fritzwatch/pkg/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent alerts and check events",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntP("limit", "n", 20, "Maximum entries per section")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sent, err := store.ListSentAlerts(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list sent alerts: %w", err)
	}

	events, err := store.ListEvents(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "SENT ALERTS")
	fmt.Fprintln(w, "DAY\tDESTINATION\tTHRESHOLD\tSENT AT")
	for _, a := range sent {
		key := fmt.Sprintf("%d min", a.ThresholdKey)
		if a.ThresholdKey == model.ConnectivityKey {
			key = "connectivity"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Day, a.Destination, key, a.SentAt.Format("15:04:05"))
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "EVENTS")
	fmt.Fprintln(w, "TIME\tLEVEL\tEVENT\tMESSAGE")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Format("01-02 15:04:05"), e.Level, e.Event, e.Message)
	}

	return w.Flush()
}
