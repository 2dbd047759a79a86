package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run monitoring checks on a schedule",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	w, store, err := initWatcher(cfg, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	runOnce := func() {
		if err := w.RunCheck(context.Background()); err != nil {
			logger.Error("check failed", "error", err)
		}
	}

	// Checks must never overlap; a slow router plus a tight schedule
	// would otherwise stack invocations.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.Schedule.Cron, runOnce); err != nil {
		return err
	}

	logger.Info("watch started", "schedule", cfg.Schedule.Cron, "device", cfg.Monitor.Device)
	runOnce()
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", "signal", sig.String())
	<-c.Stop().Done()
	return nil
}
