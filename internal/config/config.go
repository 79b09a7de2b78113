// Package config loads taskboard settings from config.yaml and TASKBOARD_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the resolved settings
type Config struct {
	DataDir        string
	DBPath         string
	StoragePrefix  string
	SearchDebounce time.Duration
	LogLevel       string
	LogFile        string
}

// Load reads config.yaml from dir (or the default config directory when dir
// is empty). A missing file yields defaults.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		dir, err = defaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("storage.prefix", "taskapp_")
	v.SetDefault("search.debounce", "300ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		DataDir:        v.GetString("data_dir"),
		DBPath:         v.GetString("db_path"),
		StoragePrefix:  v.GetString("storage.prefix"),
		SearchDebounce: v.GetDuration("search.debounce"),
		LogLevel:       v.GetString("log.level"),
		LogFile:        v.GetString("log.file"),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "taskboard.db")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "taskboard.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search.debounce must not be negative, got %s", c.SearchDebounce)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

// EnsureDataDir creates the directory holding the database and log
func (c *Config) EnsureDataDir() error {
	for _, dir := range []string{c.DataDir, filepath.Dir(c.DBPath), filepath.Dir(c.LogFile)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// defaultDataDir uses the XDG data directory or falls back to ~/.local/share
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskboard"), nil
}

func defaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskboard"), nil
}
