package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds connection settings for the field-service backend.
type BackendConfig struct {
	// BaseURL is the root URL of the backend API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// FetchTimeoutSec bounds a single fetch operation.
	FetchTimeoutSec int `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`

	// PageSize is the default page size for task list queries.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// SyncConfig holds background polling settings.
type SyncConfig struct {
	// PollIntervalSec is how often (in seconds) to refresh tasks.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// CacheConfig holds read-cache settings for the request executor.
type CacheConfig struct {
	// TTLSec is how long (in seconds) a cached read stays fresh.
	TTLSec int `mapstructure:"ttl_sec" yaml:"ttl_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`

	// DatabasePath is the location of the local offline cache database.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// LogLevel is the logrus level name ("info", "debug", ...).
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/fieldsync/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "fieldsync", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	return &AppConfig{
		Backend: BackendConfig{
			FetchTimeoutSec: 30,
			PageSize:        20,
		},
		Sync:         SyncConfig{PollIntervalSec: 120},
		Cache:        CacheConfig{TTLSec: 60},
		DatabasePath: filepath.Join(home, ".config", "fieldsync", "fieldsync.db"),
		LogLevel:     "info",
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	defaults := defaultAppConfig()
	v.SetDefault("backend.fetch_timeout_sec", defaults.Backend.FetchTimeoutSec)
	v.SetDefault("backend.page_size", defaults.Backend.PageSize)
	v.SetDefault("sync.poll_interval_sec", defaults.Sync.PollIntervalSec)
	v.SetDefault("cache.ttl_sec", defaults.Cache.TTLSec)
	v.SetDefault("database_path", defaults.DatabasePath)
	v.SetDefault("log_level", defaults.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
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

	v.Set("backend", cfg.Backend)
	v.Set("sync", cfg.Sync)
	v.Set("cache", cfg.Cache)
	v.Set("database_path", cfg.DatabasePath)
	v.Set("log_level", cfg.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
