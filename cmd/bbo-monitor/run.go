package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"bbo-monitor/internal/bbo"
	"bbo-monitor/internal/config"
	"bbo-monitor/internal/console"
	"bbo-monitor/internal/quote"
	"bbo-monitor/internal/stats"
	"bbo-monitor/internal/stream"
	"bbo-monitor/internal/tui"
)

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle system signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	source := newSource(cfg)
	if err := source.Start(ctx); err != nil {
		return err
	}

	if flagTUI {
		return runTUI(ctx, cancel, cfg, source)
	}
	return runConsole(ctx, cancel, cfg, source)
}

// newSource picks the frame source from the configuration.
func newSource(cfg *config.Config) stream.Source {
	if cfg.UDP.Enabled {
		logrus.Infof("listening for BBO datagrams on udp:%d", cfg.UDP.Port)
		return stream.NewUDPSource(cfg.UDP.Port, cfg.UDP.Group)
	}
	logrus.Infof("reading BBO packets from %s", cfg.Device)
	return stream.NewDeviceSource(cfg.Device,
		stream.WithReadBackoff(cfg.ReadBackoff),
		stream.WithFollow(cfg.Follow))
}

// runConsole prints one block per packet until the source ends, the context
// is cancelled, or the configured packet count is reached.
func runConsole(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, source stream.Source) error {
	decoder := bbo.NewDecoder(cfg.ClockPeriodNs)
	printer := console.NewPrinter(os.Stdout)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("received %d BBO packets", printer.Count())
			return nil
		case frame, ok := <-source.Frames():
			if !ok {
				logrus.Infof("received %d BBO packets", printer.Count())
				return nil
			}

			pkt, latency, warnings, err := decoder.Decode(frame.Data)
			if err != nil {
				var sizeErr *bbo.SizeMismatchError
				if errors.As(err, &sizeErr) {
					logrus.Warnf("discarding frame from %s: %v", frame.Origin, err)
					continue
				}
				return err
			}

			printer.Print(pkt, latency, warnings)

			if cfg.Count > 0 && printer.Count() >= cfg.Count {
				cancel()
				source.Stop()
				logrus.Infof("received %d BBO packets", printer.Count())
				return nil
			}
		}
	}
}

// runTUI feeds decoded packets into the quote and stats state while the
// bubbletea program owns the terminal.
func runTUI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, source stream.Source) error {
	decoder := bbo.NewDecoder(cfg.ClockPeriodNs)
	quotes := quote.NewManager()
	tracker := stats.NewTracker()

	// The TUI owns stdout/stderr; drop operational logging while it runs.
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(os.Stderr)

	go func() {
		for frame := range source.Frames() {
			pkt, latency, warnings, err := decoder.Decode(frame.Data)
			if err != nil {
				continue
			}

			symbol := pkt.SymbolString()
			quotes.GetOrCreate(symbol).Update(pkt, latency, warnings)
			tracker.RecordPacket(symbol, warnings, latency)
		}
	}()

	model := tui.NewModel(quotes, tracker)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err := p.Run()
	cancel()
	return err
}
