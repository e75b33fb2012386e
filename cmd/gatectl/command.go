package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/gatelink/internal/gate"
)

// commandCmd represents the cmd command
var commandCmd = &cobra.Command{
	Use:   "cmd <open|close|stop|partial1|partial2> [device-address]",
	Short: "Send a gate command",
	Long: `Send a movement command to the gate controller.

The write result is authoritative: if the transport confirms the write, the
command was delivered. The controller's acknowledgement, when available, is
shown for diagnostics.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{gate.CommandOpen, gate.CommandClose, gate.CommandStop, gate.CommandPartial1, gate.CommandPartial2},
	RunE:      runCommand,
}

func runCommand(cmd *cobra.Command, args []string) error {
	name := args[0]
	switch name {
	case gate.CommandOpen, gate.CommandClose, gate.CommandStop, gate.CommandPartial1, gate.CommandPartial2:
	default:
		return fmt.Errorf("unknown command %q", name)
	}

	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, _, err := connect(ctx, cmd, args[1:])
	if err != nil {
		return err
	}
	defer func() { _ = sess.Disconnect() }()

	ack, err := sess.Send(gate.NewCommand(name))
	if err != nil {
		return err
	}

	color.Green("command %q delivered", name)
	if ack != nil {
		fmt.Printf("controller ack: success=%t", ack.Success)
		if ack.Message != "" {
			fmt.Printf(" message=%q", ack.Message)
		}
		fmt.Println()
	}
	return nil
}
