package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/srg/gatelink/internal/session"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for gate controllers",
	Long: `Scan for BLE gate controllers in the vicinity.

Devices are filtered by the advertised name prefix (default "GATE-"), so
unrelated BLE traffic never shows up. An empty result is normal when no
controller is in range.`,
	RunE: runScan,
}

var (
	scanDuration time.Duration
	scanFormat   string
	scanPrefix   string
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 0, "Scan duration (default from config)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	scanCmd.Flags().StringVar(&scanPrefix, "prefix", "", "Device name prefix filter (default from config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFormat != "table" && scanFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be table or json", scanFormat)
	}

	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	opts := session.ScanOptions{
		Timeout:    cfg.ScanTimeout,
		NamePrefix: cfg.NamePrefix,
	}
	if scanDuration > 0 {
		opts.Timeout = scanDuration
	}
	if scanPrefix != "" {
		opts.NamePrefix = scanPrefix
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess := newSession(cmd, cfg, logger)
	devices, err := sess.Scan(ctx, opts)
	if err != nil {
		return err
	}

	return printDevices(os.Stdout, devices, scanFormat)
}

func printDevices(out io.Writer, devices map[string]session.DeviceInfo, format string) error {
	sorted := make([]session.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if format == "json" {
		return json.NewEncoder(out).Encode(sorted)
	}

	if len(sorted) == 0 {
		fmt.Fprintln(out, "No gate controllers found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tNAME\tRSSI")
	for _, d := range sorted {
		fmt.Fprintf(w, "%s\t%s\t%d\n", d.ID, d.Name, d.RSSI)
	}
	return w.Flush()
}
