package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/dkemper/fritzwatch/pkg/model"
)

// Config holds all fritzwatch configuration.
type Config struct {
	Router   RouterConfig   `mapstructure:"router"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Storage  StorageConfig  `mapstructure:"storage"`
	SMS      SMSConfig      `mapstructure:"sms"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// RouterConfig defines how to reach and log in to the router.
type RouterConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	UsagePage string `mapstructure:"usage_page"`
}

// MonitorConfig defines what to watch and who to alert.
type MonitorConfig struct {
	Device              string              `mapstructure:"device"`
	Destinations        []model.Destination `mapstructure:"destinations"`
	DestinationsFile    string              `mapstructure:"destinations_file"`
	ConnectivityMessage string              `mapstructure:"connectivity_message"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// SMSConfig defines the SMS gateway settings.
type SMSConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	APIKey     string `mapstructure:"api_key"`
	Secret     string `mapstructure:"secret"`
}

// ScheduleConfig defines the check cadence for watch mode.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables, merges
// the optional destinations file, and validates the result.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".fritzwatch"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("router.base_url", "http://fritz.box")
	v.SetDefault("router.usage_page", "kidPro")
	v.SetDefault("storage.path", filepath.Join(home, ".fritzwatch", "fritzwatch.db"))
	v.SetDefault("schedule.cron", "*/15 * * * *")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("FW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Monitor.DestinationsFile != "" {
		dests, err := LoadDestinations(cfg.Monitor.DestinationsFile)
		if err != nil {
			return nil, err
		}
		cfg.Monitor.Destinations = append(cfg.Monitor.Destinations, dests...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var numberRe = regexp.MustCompile(`^\+?[1-9][0-9]{4,14}$`)

// Validate checks the configuration for contradictions that would make
// alerting ambiguous or impossible.
func (c *Config) Validate() error {
	if c.Router.BaseURL == "" {
		return fmt.Errorf("config: router.base_url is required")
	}
	if c.Router.Password == "" {
		return fmt.Errorf("config: router.password is required")
	}
	if c.Monitor.Device == "" {
		return fmt.Errorf("config: monitor.device is required")
	}

	for _, dest := range c.Monitor.Destinations {
		if !numberRe.MatchString(dest.Number) {
			return fmt.Errorf("config: destination %q is not a valid phone number", dest.Number)
		}

		seen := make(map[int]bool, len(dest.Thresholds))
		for _, rule := range dest.Thresholds {
			if rule.Minutes < 0 {
				return fmt.Errorf("config: destination %s: threshold minutes must be >= 0, got %d", dest.Number, rule.Minutes)
			}
			if rule.Message == "" {
				return fmt.Errorf("config: destination %s: threshold %d has no message", dest.Number, rule.Minutes)
			}
			if seen[rule.Minutes] {
				// Equal minute values make the selection order
				// ambiguous, so they are rejected outright.
				return fmt.Errorf("config: destination %s: duplicate threshold %d minutes", dest.Number, rule.Minutes)
			}
			seen[rule.Minutes] = true
		}
	}

	return nil
}
