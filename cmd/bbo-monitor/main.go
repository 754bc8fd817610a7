// Command bbo-monitor receives 48-byte BBO telemetry records from the FPGA
// C2H stream (or a UDP mirror of it), decodes them, and reports quotes,
// warnings, and pipeline latency either as plain lines or in a live TUI.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"bbo-monitor/internal/config"
)

var (
	// Global flags
	configFile string
	flagDevice string
	flagFollow bool
	flagCount  int
	flagClock  uint32
	flagUDP    bool
	flagPort   int
	flagGroup  string
	flagTUI    bool
	flagLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "bbo-monitor",
	Short: "BBO telemetry receiver for the FPGA market-data pipeline",
	Long: `bbo-monitor reads fixed-size BBO records from the XDMA C2H stream device
(or a UDP mirror used on bench rigs), decodes the quote fields and hardware
timestamps, validates the padding sentinel, and derives parse-to-transmit
latency from the embedded cycle counters.

By default each packet is printed as one line, the way the original host
receiver did. With --tui a live per-symbol dashboard is shown instead.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMonitor,
}

// loadConfig builds the effective configuration: file and environment first,
// then explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("device") {
		cfg.Device = flagDevice
	}
	if cmd.Flags().Changed("follow") {
		cfg.Follow = flagFollow
	}
	if cmd.Flags().Changed("count") {
		cfg.Count = flagCount
	}
	if cmd.Flags().Changed("clock-period-ns") {
		cfg.ClockPeriodNs = flagClock
	}
	if cmd.Flags().Changed("udp") {
		cfg.UDP.Enabled = flagUDP
	}
	if cmd.Flags().Changed("udp-port") {
		cfg.UDP.Port = flagPort
	}
	if cmd.Flags().Changed("udp-group") {
		cfg.UDP.Group = flagGroup
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flagLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logrus.SetLevel(level)

	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path")
	rootCmd.PersistentFlags().StringVarP(&flagDevice, "device", "d", "",
		"C2H stream device node or capture file")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	rootCmd.Flags().BoolVar(&flagFollow, "follow", false,
		"keep reading past EOF (for idle device nodes)")
	rootCmd.Flags().IntVarP(&flagCount, "count", "n", 0,
		"number of packets to receive before exiting (0 = unlimited)")
	rootCmd.Flags().Uint32Var(&flagClock, "clock-period-ns", 0,
		"timestamp clock period in nanoseconds")
	rootCmd.Flags().BoolVar(&flagUDP, "udp", false,
		"receive from the UDP mirror instead of the device")
	rootCmd.Flags().IntVar(&flagPort, "udp-port", 0,
		"UDP mirror port")
	rootCmd.Flags().StringVar(&flagGroup, "udp-group", "",
		"multicast group to join for the UDP mirror")
	rootCmd.Flags().BoolVar(&flagTUI, "tui", false,
		"show the live dashboard instead of line output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
