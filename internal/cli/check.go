package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single monitoring check",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("dry-run", false, "Print alerts instead of sending them")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var dryRunOut io.Writer
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		dryRunOut = os.Stdout
	}

	w, store, err := initWatcher(cfg, dryRunOut)
	if err != nil {
		return err
	}
	defer store.Close()

	return w.RunCheck(cmd.Context())
}
