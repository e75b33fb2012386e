// Package config holds client settings shared by the library and the CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel       string        `yaml:"log_level"`
	ScanTimeout    time.Duration `yaml:"scan_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// NamePrefix filters scan results to gate controllers; deployed firmware
	// advertises names like GATE-3F2A.
	NamePrefix   string        `yaml:"name_prefix"`
	OutputFormat string        `yaml:"output_format"` // table, json
	PushInterval time.Duration `yaml:"push_interval"` // simulated transport cadence
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		ScanTimeout:    10 * time.Second,
		ConnectTimeout: 30 * time.Second,
		NamePrefix:     "GATE-",
		OutputFormat:   "table",
		PushInterval:   500 * time.Millisecond,
	}
}

// LoadFile reads a YAML config file over the defaults. Unset keys keep their
// default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger, nil
}
