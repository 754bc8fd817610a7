package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bbo-monitor/internal/console"
)

// debugBufferSize is the single-read size used to probe whether the stream
// delivers any data at all.
const debugBufferSize = 4096

var dumpBytes int

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read one raw buffer from the stream and hexdump it",
	Long: `dump performs a single large read against the C2H stream and prints
whatever arrived as a hex dump. Use it to check that the FPGA is producing
data before worrying about packet contents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(cfg.Device)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", cfg.Device, err)
		}
		defer f.Close()

		buf := make([]byte, dumpBytes)
		n, err := f.Read(buf)
		if n == 0 {
			if err != nil {
				fmt.Printf("Read failed: %v\n", err)
			}
			fmt.Println("No data received!")
			fmt.Println()
			fmt.Println("Possible causes:")
			fmt.Println("  1. FPGA not generating BBO data (check ctrl_enable)")
			fmt.Println("  2. PCIe link not up (check user_lnk_up LED)")
			fmt.Println("  3. XDMA C2H stream not configured correctly")
			return nil
		}

		fmt.Printf("Read %d bytes:\n", n)
		limit := n
		if limit > 256 {
			limit = 256
		}
		fmt.Print(console.Hexdump(buf[:limit]))
		if n > limit {
			fmt.Printf("... (%d more bytes)\n", n-limit)
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().IntVar(&dumpBytes, "bytes", debugBufferSize,
		"number of bytes to request in the probe read")
	rootCmd.AddCommand(dumpCmd)
}
