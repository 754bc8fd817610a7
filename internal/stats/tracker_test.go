package stats

import (
	"testing"

	"bbo-monitor/internal/bbo"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	if tracker == nil {
		t.Fatal("NewTracker() returned nil")
	}

	if len(tracker.GetAllSymbols()) != 0 {
		t.Errorf("GetAllSymbols() = %v, want empty", tracker.GetAllSymbols())
	}
}

func TestTracker_RecordPacket(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordPacket("AAPL", nil, nil)

	stats := tracker.GetSymbolStats("AAPL")
	if stats == nil {
		t.Fatal("GetSymbolStats(AAPL) returned nil")
	}

	if stats.PacketCount != 1 {
		t.Errorf("PacketCount = %d, want 1", stats.PacketCount)
	}
	if stats.BadSentinels != 0 {
		t.Errorf("BadSentinels = %d, want 0", stats.BadSentinels)
	}
	if stats.LastPacket.IsZero() {
		t.Error("LastPacket not set")
	}
}

func TestTracker_SentinelErrors(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordPacket("AAPL", nil, nil)
	tracker.RecordPacket("AAPL", []bbo.Warning{{Kind: bbo.WarnBadSentinel, Value: 0}}, nil)
	tracker.RecordPacket("AAPL", []bbo.Warning{{Kind: bbo.WarnBadSentinel, Value: 7}}, nil)
	tracker.RecordPacket("AAPL", nil, nil)

	stats := tracker.GetSymbolStats("AAPL")
	if stats.BadSentinels != 2 {
		t.Errorf("BadSentinels = %d, want 2", stats.BadSentinels)
	}

	if got := tracker.GetSentinelErrorPercentage("AAPL"); got != 50 {
		t.Errorf("GetSentinelErrorPercentage() = %f, want 50", got)
	}
	if got := tracker.GetRecentSentinelErrorPercentage("AAPL"); got != 50 {
		t.Errorf("GetRecentSentinelErrorPercentage() = %f, want 50", got)
	}
}

func TestTracker_OtherWarningsAreNotSentinelErrors(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordPacket("AAPL", []bbo.Warning{{Kind: bbo.WarnNonPrintableSymbol, Value: 3}}, nil)

	stats := tracker.GetSymbolStats("AAPL")
	if stats.BadSentinels != 0 {
		t.Errorf("BadSentinels = %d, want 0", stats.BadSentinels)
	}
	if stats.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1", stats.WarningCount)
	}
}

func TestTracker_LatencyAggregates(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordPacket("AAPL", nil, &bbo.LatencyReport{Cycles: 100, Nanoseconds: 400})
	tracker.RecordPacket("AAPL", nil, &bbo.LatencyReport{Cycles: 50, Nanoseconds: 200})
	tracker.RecordPacket("AAPL", nil, nil) // latency unavailable
	tracker.RecordPacket("AAPL", nil, &bbo.LatencyReport{Cycles: 150, Nanoseconds: 600})

	stats := tracker.GetSymbolStats("AAPL")
	if stats.LatencySamples != 3 {
		t.Errorf("LatencySamples = %d, want 3", stats.LatencySamples)
	}
	if stats.LatencyLastNs != 600 {
		t.Errorf("LatencyLastNs = %d, want 600", stats.LatencyLastNs)
	}
	if stats.LatencyMinNs != 200 {
		t.Errorf("LatencyMinNs = %d, want 200", stats.LatencyMinNs)
	}
	if stats.LatencyMaxNs != 600 {
		t.Errorf("LatencyMaxNs = %d, want 600", stats.LatencyMaxNs)
	}
	if got := tracker.GetMeanLatencyNs("AAPL"); got != 400 {
		t.Errorf("GetMeanLatencyNs() = %d, want 400", got)
	}
}

func TestTracker_PacketRate(t *testing.T) {
	tracker := NewTracker()

	for i := 0; i < 10; i++ {
		tracker.RecordPacket("AAPL", nil, nil)
	}

	rate := tracker.GetPacketRate("AAPL")
	if rate != 10 {
		t.Errorf("GetPacketRate() = %f, want 10", rate)
	}

	if got := tracker.GetPacketRate("UNKNOWN"); got != 0 {
		t.Errorf("GetPacketRate(UNKNOWN) = %f, want 0", got)
	}
}

func TestTracker_SeparateSymbols(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordPacket("AAPL", nil, nil)
	tracker.RecordPacket("MSFT", nil, nil)
	tracker.RecordPacket("MSFT", nil, nil)

	if got := tracker.GetSymbolStats("AAPL").PacketCount; got != 1 {
		t.Errorf("AAPL PacketCount = %d, want 1", got)
	}
	if got := tracker.GetSymbolStats("MSFT").PacketCount; got != 2 {
		t.Errorf("MSFT PacketCount = %d, want 2", got)
	}
	if got := len(tracker.GetAllSymbols()); got != 2 {
		t.Errorf("len(GetAllSymbols()) = %d, want 2", got)
	}
}

func TestSymbolStats_GetInfo(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordPacket("AAPL", []bbo.Warning{{Kind: bbo.WarnBadSentinel, Value: 7}}, nil)
	tracker.RecordPacket("AAPL", nil, &bbo.LatencyReport{Cycles: 100, Nanoseconds: 400})

	info := tracker.GetSymbolStats("AAPL").GetInfo()
	if info.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", info.Symbol)
	}
	if info.PacketCount != 2 {
		t.Errorf("PacketCount = %d, want 2", info.PacketCount)
	}
	if info.BadSentinels != 1 {
		t.Errorf("BadSentinels = %d, want 1", info.BadSentinels)
	}
	if info.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1", info.WarningCount)
	}
	if info.LatencySamples != 1 || info.LatencyLastNs != 400 {
		t.Errorf("latency snapshot = %d samples / last %d ns, want 1 / 400",
			info.LatencySamples, info.LatencyLastNs)
	}
	if info.LastPacket.IsZero() {
		t.Error("LastPacket not set")
	}
}

func TestTracker_ConcurrentRecordAndSnapshot(t *testing.T) {
	tracker := NewTracker()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			tracker.RecordPacket("AAPL",
				[]bbo.Warning{{Kind: bbo.WarnBadSentinel}},
				&bbo.LatencyReport{Cycles: 1, Nanoseconds: 4})
		}
	}()

	for i := 0; i < 1000; i++ {
		if stats := tracker.GetSymbolStats("AAPL"); stats != nil {
			info := stats.GetInfo()
			if info.LatencySamples > info.PacketCount {
				t.Fatalf("LatencySamples = %d > PacketCount = %d",
					info.LatencySamples, info.PacketCount)
			}
		}
		tracker.GetPacketRate("AAPL")
		tracker.GetSentinelErrorPercentage("AAPL")
		tracker.GetRecentSentinelErrorPercentage("AAPL")
		tracker.GetMeanLatencyNs("AAPL")
	}
	<-done
}

func TestTracker_ResetSymbolStats(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordPacket("AAPL", []bbo.Warning{{Kind: bbo.WarnBadSentinel}}, &bbo.LatencyReport{Nanoseconds: 400})
	tracker.ResetSymbolStats("AAPL")

	stats := tracker.GetSymbolStats("AAPL")
	if stats == nil {
		t.Fatal("symbol removed by reset, want zeroed stats")
	}
	if stats.PacketCount != 0 || stats.BadSentinels != 0 || stats.LatencySamples != 0 {
		t.Errorf("stats not zeroed: %+v", stats)
	}
}

func TestTracker_ResetAllStats(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordPacket("AAPL", nil, nil)
	tracker.RecordPacket("MSFT", nil, nil)
	tracker.ResetAllStats()

	if got := len(tracker.GetAllSymbols()); got != 0 {
		t.Errorf("len(GetAllSymbols()) = %d after reset, want 0", got)
	}
}
