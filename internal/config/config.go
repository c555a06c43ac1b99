package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultPollIntervalSeconds = 5
	DefaultRetentionDays       = 30
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
}

// MonitorConfig controls how often the system source polls network
// interfaces.
type MonitorConfig struct {
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

func (m MonitorConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalSeconds) * time.Second
}

// NotificationConfig stores desktop notification preferences.
type NotificationConfig struct {
	Enabled           bool `json:"enabled"`
	NotifyWhenFocused bool `json:"notify_when_focused"`
}

// HistoryConfig controls the on-disk connectivity transition log.
type HistoryConfig struct {
	Enabled       bool `json:"enabled"`
	RetentionDays int  `json:"retention_days"`
}

type AppConfig struct {
	Logging       LoggingConfig      `json:"logging"`
	Monitor       MonitorConfig      `json:"monitor"`
	Notifications NotificationConfig `json:"notifications"`
	History       HistoryConfig      `json:"history"`
}

func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		Monitor: MonitorConfig{
			PollIntervalSeconds: DefaultPollIntervalSeconds,
		},
		Notifications: NotificationConfig{
			Enabled:           true,
			NotifyWhenFocused: false,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: DefaultRetentionDays,
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Monitor.PollIntervalSeconds <= 0 {
		c.Monitor.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
}

func (c AppConfig) Validate() error {
	if c.Monitor.PollIntervalSeconds <= 0 {
		return errors.New("monitor poll interval must be positive")
	}
	if c.History.RetentionDays < 0 {
		return errors.New("history retention days must not be negative")
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
