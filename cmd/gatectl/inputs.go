package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srg/gatelink/internal/wire"
)

// inputsCmd groups the input channel subcommands
var inputsCmd = &cobra.Command{
	Use:   "inputs",
	Short: "Inspect input channels",
	Long: `Inspect the controller's wired input channels: their configuration
(electrical type and assigned function) and their live state.

Requires firmware that exposes the configuration and diagnostics services.`,
}

var inputsConfigCmd = &cobra.Command{
	Use:   "config [device-address]",
	Short: "Show input channel configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInputsConfig,
}

var inputsStatesCmd = &cobra.Command{
	Use:   "states [device-address]",
	Short: "Show live input channel states",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInputsStates,
}

func init() {
	inputsCmd.AddCommand(inputsConfigCmd)
	inputsCmd.AddCommand(inputsStatesCmd)
}

func runInputsConfig(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, _, err := connect(ctx, cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Disconnect() }()

	configs, err := sess.ReadInputConfigs()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CH\tNAME\tENABLED\tTYPE\tFUNCTION\tTARGET")
	for _, c := range configs {
		target := "-"
		if c.TargetResistance > 0 {
			target = fmt.Sprintf("%.0fΩ ±%g%%", c.TargetResistance, c.TolerancePercent)
		}
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\t%s\n", c.Channel, c.Name, c.Enabled, c.Type, c.Function, target)
	}
	return w.Flush()
}

func runInputsStates(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, _, err := connect(ctx, cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Disconnect() }()

	states, err := sess.ReadInputStates()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tACTIVE\tVOLTAGE\tRESISTANCE")
	for _, s := range states {
		voltage, resistance := "-", "-"
		if s.HasVoltage {
			voltage = fmt.Sprintf("%.2fV", s.Voltage)
			if ohms, ok := wire.SensorResistance(s.Voltage); ok {
				resistance = fmt.Sprintf("%.0fΩ", ohms)
			} else {
				resistance = "out of range"
			}
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", s.Name, s.Active, voltage, resistance)
	}
	return w.Flush()
}
