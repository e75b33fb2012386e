package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/gatelink/internal/wire"
)

// configCmd groups the controller configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or write controller configuration",
	Long: `Read or write the controller's numeric parameter set.

Available on firmware that exposes the configuration service; older devices
report the feature as unavailable.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [device-address]",
	Short: "Read all configuration parameters",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key=value>... [device-address]",
	Short: "Write configuration parameters",
	Long: fmt.Sprintf(`Update one or more parameters and write the full set back.

Known parameters:
  %s`, strings.Join(wire.ConfigKeys(), "\n  ")),
	Args: cobra.MinimumNArgs(1),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, _, err := connect(ctx, cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Disconnect() }()

	cfg, err := sess.ReadConfig()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range wire.ConfigParams(&cfg) {
		if p.IsFlag() {
			fmt.Fprintf(w, "%s\t%t\n", p.Key, p.Float() != 0)
		} else {
			fmt.Fprintf(w, "%s\t%g\n", p.Key, p.Float())
		}
	}
	return w.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	// Split key=value assignments from an optional trailing device address.
	var assignments []string
	var addrArgs []string
	for _, arg := range args {
		if strings.Contains(arg, "=") {
			assignments = append(assignments, arg)
		} else {
			addrArgs = append(addrArgs, arg)
		}
	}
	if len(assignments) == 0 {
		return fmt.Errorf("no key=value assignments given")
	}
	if len(addrArgs) > 1 {
		return fmt.Errorf("at most one device address may be given")
	}

	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, _, err := connect(ctx, cmd, addrArgs)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Disconnect() }()

	// Read-modify-write: the wire format always carries the full set.
	cfg, err := sess.ReadConfig()
	if err != nil {
		return err
	}
	for _, assignment := range assignments {
		key, value, _ := strings.Cut(assignment, "=")
		if err := wire.SetConfigParam(&cfg, key, value); err != nil {
			return err
		}
	}
	if err := sess.WriteConfig(cfg); err != nil {
		return err
	}

	color.Green("configuration written (%d parameter(s) changed)", len(assignments))
	return nil
}
