package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Receipts ReceiptsConfig `mapstructure:"receipts"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type DatabaseConfig struct {
	// Path to the sqlite database file, or ":memory:" for an ephemeral store.
	Path string `mapstructure:"path"`
}

type ReceiptsConfig struct {
	Dir   string `mapstructure:"dir"`
	Owner string `mapstructure:"owner"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfigFromEnv builds a Config from environment variables, used when no
// config file is present (e.g. containerized runs).
func LoadConfigFromEnv() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("CT_DATABASE_PATH", defaultDatabasePath()),
		},
		Receipts: ReceiptsConfig{
			Dir:   getEnv("CT_RECEIPTS_DIR", defaultReceiptsDir()),
			Owner: getEnv("CT_RECEIPTS_OWNER", "local"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("CT_LOG_LEVEL", "info"),
			Format: getEnv("CT_LOG_FORMAT", "text"),
		},
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "craft-tracker.db"
	}
	return filepath.Join(home, ".craft-tracker", "craft-tracker.db")
}

func defaultReceiptsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "receipts"
	}
	return filepath.Join(home, ".craft-tracker", "receipts")
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func (c *Config) Validate() error {
	var errs []string

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Receipts.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("receipts config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

func (c *ReceiptsConfig) Validate() error {
	if c.Dir == "" {
		return errors.New("dir is required")
	}
	if c.Owner == "" {
		return errors.New("owner is required")
	}
	if strings.ContainsAny(c.Owner, "/\\") {
		return errors.New("owner must not contain path separators")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
