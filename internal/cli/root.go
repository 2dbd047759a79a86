package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkemper/fritzwatch/internal/config"
	"github.com/dkemper/fritzwatch/pkg/alerts"
	"github.com/dkemper/fritzwatch/pkg/fritz"
	"github.com/dkemper/fritzwatch/pkg/storage"
	"github.com/dkemper/fritzwatch/pkg/watcher"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fritzwatch",
	Short: "fritzwatch - remaining online-time alerts for parental-controlled devices",
	Long: `fritzwatch polls a FRITZ!Box-style router's parental-control pages for a
device's remaining online time and sends SMS alerts when configured
remaining-minute thresholds are crossed. Each threshold fires at most once
per destination per day; admins get a once-per-day alert when the router
cannot be reached.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.fritzwatch/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initNotifier creates the notification transport. dryRunOut non-nil
// selects the console notifier instead of the SMS gateway.
func initNotifier(cfg *config.Config, dryRunOut io.Writer) alerts.Notifier {
	if dryRunOut != nil {
		return alerts.NewConsoleNotifier(dryRunOut)
	}
	return alerts.NewSMSGatewayNotifier(cfg.SMS.GatewayURL, cfg.SMS.APIKey, cfg.SMS.Secret)
}

// initWatcher creates a fully wired watcher. The caller owns the
// returned storage and must close it.
func initWatcher(cfg *config.Config, dryRunOut io.Writer) (*watcher.Watcher, storage.Storage, error) {
	logger := newLogger(cfg)

	store, err := initStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	auth := fritz.NewSessionAuthenticator(cfg.Router.BaseURL, cfg.Router.Username, cfg.Router.Password)
	fetcher := fritz.NewUsageStateFetcher(cfg.Router.BaseURL, cfg.Router.UsagePage)
	notifier := initNotifier(cfg, dryRunOut)

	w := watcher.New(auth, fetcher, store, notifier, watcher.Config{
		Device:              cfg.Monitor.Device,
		Destinations:        cfg.Monitor.Destinations,
		ConnectivityMessage: cfg.Monitor.ConnectivityMessage,
	}, logger)

	return w, store, nil
}
