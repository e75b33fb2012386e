package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/gatelink/pkg/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "GATE-", cfg.NamePrefix)
	assert.Equal(t, "table", cfg.OutputFormat)
}

func TestLoadFile(t *testing.T) {
	t.Run("file values override defaults, unset keys keep them", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"log_level: debug\nscan_timeout: 3s\nname_prefix: \"GATE-WEST-\"\n"), 0o644))

		cfg, err := config.LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.ScanTimeout)
		assert.Equal(t, "GATE-WEST-", cfg.NamePrefix)
		assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed YAML is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log_level: [broken"), 0o644))

		_, err := config.LoadFile(path)
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("applies the configured level", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.LogLevel = "warn"

		logger, err := cfg.NewLogger()
		require.NoError(t, err)
		assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.LogLevel = "chatty"

		_, err := cfg.NewLogger()
		assert.Error(t, err)
	})
}
