package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the notification timings.
const (
	DefaultPollIntervalSec  = 15
	DefaultCountIntervalSec = 30
	DefaultToastDurationMS  = 6000
	DefaultHistoryLimit     = 200
	DefaultAPITimeoutSec    = 30
	DefaultAPIBaseURL       = "http://localhost:8000/api"
)

// APIConfig holds the platform REST API settings.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// NotificationConfig holds the polling and toast timings.
type NotificationConfig struct {
	// PollIntervalSec is the period of the unread notification poll.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// CountIntervalSec is the period of the lighter unread counter poll.
	CountIntervalSec int `mapstructure:"count_interval_sec" yaml:"count_interval_sec"`

	// ToastDurationMS is how long a toast stays visible without interaction.
	ToastDurationMS int `mapstructure:"toast_duration_ms" yaml:"toast_duration_ms"`

	// HistoryLimit caps the local toast history per user.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
}

// PollInterval returns the notification poll period.
func (c NotificationConfig) PollInterval() time.Duration {
	if c.PollIntervalSec <= 0 {
		return DefaultPollIntervalSec * time.Second
	}
	return time.Duration(c.PollIntervalSec) * time.Second
}

// CountInterval returns the unread counter poll period.
func (c NotificationConfig) CountInterval() time.Duration {
	if c.CountIntervalSec <= 0 {
		return DefaultCountIntervalSec * time.Second
	}
	return time.Duration(c.CountIntervalSec) * time.Second
}

// ToastDuration returns the toast display duration.
func (c NotificationConfig) ToastDuration() time.Duration {
	if c.ToastDurationMS <= 0 {
		return DefaultToastDurationMS * time.Millisecond
	}
	return time.Duration(c.ToastDurationMS) * time.Millisecond
}

// LogConfig controls the log file. Stdout belongs to the terminal UI.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig          `mapstructure:"api" yaml:"api"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Log           LogConfig          `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/visadesk, or the working directory when the
// home directory cannot be determined.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "visadesk")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultDBPath returns the default path of the local toast history database.
func DefaultDBPath() string {
	return filepath.Join(ConfigDir(), "visadesk.db")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    DefaultAPIBaseURL,
			TimeoutSec: DefaultAPITimeoutSec,
		},
		Notifications: NotificationConfig{
			PollIntervalSec:  DefaultPollIntervalSec,
			CountIntervalSec: DefaultCountIntervalSec,
			ToastDurationMS:  DefaultToastDurationMS,
			HistoryLimit:     DefaultHistoryLimit,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "visadesk.log"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Missing files yield the defaults. VISADESK_* environment variables
// override file values (e.g. VISADESK_API_BASE_URL).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("visadesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultAppConfig()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("notifications.poll_interval_sec", def.Notifications.PollIntervalSec)
	v.SetDefault("notifications.count_interval_sec", def.Notifications.CountIntervalSec)
	v.SetDefault("notifications.toast_duration_ms", def.Notifications.ToastDurationMS)
	v.SetDefault("notifications.history_limit", def.Notifications.HistoryLimit)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = DefaultAPITimeoutSec
	}
	if cfg.Notifications.HistoryLimit <= 0 {
		cfg.Notifications.HistoryLimit = DefaultHistoryLimit
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("notifications", cfg.Notifications)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
