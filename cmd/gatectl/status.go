package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/gatelink/internal/gate"
	"github.com/srg/gatelink/internal/session"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [device-address]",
	Short: "Show gate status",
	Long: `Read and display the gate's live status: state, motor positions and
speeds, and the auto-close countdown.

With --watch, subscribes to status notifications and prints every update
until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

var statusWatch bool

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Stream status updates until interrupted")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, _, err := connect(ctx, cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Disconnect() }()

	// Explicit read first: no need to wait a full push interval for data.
	status, err := sess.ReadStatus()
	if err != nil {
		return err
	}
	printStatus(status)

	if !statusWatch {
		return nil
	}

	sub, err := sess.SubscribeStatus()
	if err != nil {
		return err
	}
	defer sub.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-sess.Events():
			switch event.Type {
			case session.EventStatusUpdated:
				if s := sess.Model().Status(); s != nil {
					printStatus(*s)
				}
			case session.EventConnectionLost:
				color.Red("connection lost - last status shown is stale")
				return nil
			}
		}
	}
}

func printStatus(s gate.Status) {
	stateColor := color.New(color.FgYellow)
	switch s.State {
	case gate.StateOpen:
		stateColor = color.New(color.FgGreen)
	case gate.StateClosed:
		stateColor = color.New(color.FgCyan)
	case gate.StateObstructed, gate.StateReversing:
		stateColor = color.New(color.FgRed)
	}

	fmt.Printf("state=%s m1=%d%% m2=%d%% m1_speed=%.2f m2_speed=%.2f",
		stateColor.Sprint(s.State), s.Motor1Percent, s.Motor2Percent, s.Motor1Speed, s.Motor2Speed)
	if s.AutoCloseActive() {
		fmt.Printf(" auto_close_in=%ds", s.AutoCloseCountdown)
	}
	fmt.Println()
}
