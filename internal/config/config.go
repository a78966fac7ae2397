// Package config loads tagwatch configuration. Values come from an optional
// YAML file overlaid by environment variables; the environment always wins,
// which keeps container deployments working with nothing but env vars the
// way the original .env-driven setup did.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for every knob a deployment can leave unset.
const (
	DefaultCheckInterval         = "@daily"
	DefaultNotificationFrequency = 7
	DefaultDataDir               = "./data"
	DefaultGotifyPriority        = 5
	DefaultGotifyTitle           = "tagwatch"
)

// Config is the explicit application configuration. No hidden globals: it is
// built once at startup and handed to whoever needs it.
type Config struct {
	// CheckInterval is a cron expression governing how often a check cycle runs
	CheckInterval string `yaml:"check_interval"`

	// NotificationFrequencyDays is the re-notification cadence for an
	// unchanged update candidate
	NotificationFrequencyDays int `yaml:"notification_frequency_days"`

	// DataDir holds the JSON state file and, by default, the history database
	DataDir string `yaml:"data_dir"`

	// HistoryDBPath locates the SQLite check-history database. Empty means
	// DataDir/history.db; "disabled" turns history off entirely.
	HistoryDBPath string `yaml:"history_db_path"`

	// Gotify delivery settings
	GotifyURL      string `yaml:"gotify_url"`
	GotifyToken    string `yaml:"gotify_token"`
	GotifyPriority int    `yaml:"gotify_priority"`
	GotifyTitle    string `yaml:"gotify_title"`
}

// Load builds the configuration. yamlPath may be empty; a missing YAML file
// is not an error, matching how optional config files behave elsewhere.
func Load(yamlPath string) (*Config, error) {
	cfg := &Config{
		CheckInterval:             DefaultCheckInterval,
		NotificationFrequencyDays: DefaultNotificationFrequency,
		DataDir:                   DefaultDataDir,
		GotifyPriority:            DefaultGotifyPriority,
		GotifyTitle:               DefaultGotifyTitle,
	}

	if yamlPath != "" {
		if err := cfg.loadYAML(yamlPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadYAML overlays values from a YAML file onto the defaults.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables; set variables take precedence over
// both defaults and the YAML file.
func (c *Config) loadEnv() error {
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		c.CheckInterval = v
	}
	if v := os.Getenv("NOTIFICATION_FREQUENCY"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTIFICATION_FREQUENCY must be an integer number of days, got %q", v)
		}
		c.NotificationFrequencyDays = days
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.HistoryDBPath = v
	}
	if v := os.Getenv("GOTIFY_URL"); v != "" {
		c.GotifyURL = v
	}
	if v := os.Getenv("GOTIFY_TOKEN"); v != "" {
		c.GotifyToken = v
	}
	if v := os.Getenv("GOTIFY_PRIORITY"); v != "" {
		priority, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GOTIFY_PRIORITY must be an integer, got %q", v)
		}
		c.GotifyPriority = priority
	}
	if v := os.Getenv("GOTIFY_TITLE"); v != "" {
		c.GotifyTitle = v
	}
	return nil
}

// validate rejects configurations the process cannot start with.
func (c *Config) validate() error {
	if c.NotificationFrequencyDays < 0 {
		return fmt.Errorf("notification frequency must not be negative, got %d", c.NotificationFrequencyDays)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	return nil
}

// NotifierConfigured reports whether Gotify delivery is usable. Running
// without a notifier is allowed: updates are still detected, logged and
// recorded in history.
func (c *Config) NotifierConfigured() bool {
	return c.GotifyURL != "" && c.GotifyToken != ""
}

// HistoryEnabled reports whether the SQLite check history should be opened.
func (c *Config) HistoryEnabled() bool {
	return c.HistoryDBPath != "disabled"
}
