package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/gatelink/internal/session"
	"github.com/srg/gatelink/internal/transport"
	"github.com/srg/gatelink/internal/transport/goble"
	"github.com/srg/gatelink/internal/transport/sim"
	"github.com/srg/gatelink/pkg/config"
)

// loadConfig builds the effective configuration: defaults, then the optional
// --config file over them.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.ConnectTimeout = timeout
	}
	return cfg, nil
}

// newSession builds a session over the real radio, or over the simulated
// controller when --simulate is set.
func newSession(cmd *cobra.Command, cfg *config.Config, logger *logrus.Logger) *session.Session {
	simulate, _ := cmd.Flags().GetBool("simulate")
	var tr transport.Transport
	if simulate {
		tr = sim.New(logger, sim.WithPushInterval(cfg.PushInterval))
	} else {
		tr = goble.New(logger)
	}
	return session.New(tr, logger)
}

// resolveAddress decides which device to talk to: an explicit positional
// address wins, then the --address flag, --simulate implies the simulated
// controller, otherwise the first scan hit matching the configured name
// prefix is used.
func resolveAddress(ctx context.Context, cmd *cobra.Command, cfg *config.Config, sess *session.Session, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if addr, _ := cmd.Flags().GetString("address"); addr != "" {
		return addr, nil
	}
	if simulate, _ := cmd.Flags().GetBool("simulate"); simulate {
		return sim.DeviceAddr, nil
	}

	devices, err := sess.Scan(ctx, session.ScanOptions{
		Timeout:    cfg.ScanTimeout,
		NamePrefix: cfg.NamePrefix,
	})
	if err != nil {
		return "", err
	}
	for id := range devices {
		return id, nil
	}
	return "", fmt.Errorf("no gate controller found (name prefix %q); pass a device address explicitly", cfg.NamePrefix)
}

// connect dials the target device and returns a connected session plus its
// address. Callers own the disconnect.
func connect(ctx context.Context, cmd *cobra.Command, args []string) (*session.Session, *config.Config, error) {
	logger, err := configureLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	sess := newSession(cmd, cfg, logger)
	addr, err := resolveAddress(ctx, cmd, cfg, sess, args)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.Connect(ctx, addr, cfg.ConnectTimeout); err != nil {
		return nil, nil, err
	}
	return sess, cfg, nil
}
