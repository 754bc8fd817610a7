package quote

import (
	"testing"
	"time"

	"bbo-monitor/internal/bbo"
)

func testPacket(symbol string, bid, ask uint32) *bbo.Packet {
	p := &bbo.Packet{
		BidPrice:   bid,
		BidSize:    100,
		AskPrice:   ask,
		AskSize:    200,
		Spread:     ask - bid,
		ReceivedAt: time.Now(),
	}
	copy(p.Symbol[:], []byte(symbol))
	return p
}

func TestQuote_Update(t *testing.T) {
	q := NewQuote("AAPL")
	lat := &bbo.LatencyReport{Cycles: 100, Nanoseconds: 400}

	q.Update(testPacket("AAPL", 15000, 15005), lat, nil)

	info := q.GetInfo()
	if info.BidPrice != 15000 {
		t.Errorf("BidPrice = %d, want 15000", info.BidPrice)
	}
	if info.AskPrice != 15005 {
		t.Errorf("AskPrice = %d, want 15005", info.AskPrice)
	}
	if info.Spread != 5 {
		t.Errorf("Spread = %d, want 5", info.Spread)
	}
	if info.PacketCount != 1 {
		t.Errorf("PacketCount = %d, want 1", info.PacketCount)
	}
	if info.Latency == nil || info.Latency.Nanoseconds != 400 {
		t.Errorf("Latency = %+v, want 400 ns", info.Latency)
	}
	if info.LastPacket.IsZero() {
		t.Error("LastPacket not set")
	}
}

func TestQuote_UpdateReplacesState(t *testing.T) {
	q := NewQuote("AAPL")

	q.Update(testPacket("AAPL", 15000, 15005), &bbo.LatencyReport{Cycles: 1, Nanoseconds: 4}, nil)
	q.Update(testPacket("AAPL", 15010, 15015), nil,
		[]bbo.Warning{{Kind: bbo.WarnBadSentinel, Value: 0}})

	info := q.GetInfo()
	if info.BidPrice != 15010 {
		t.Errorf("BidPrice = %d, want 15010", info.BidPrice)
	}
	if info.Latency != nil {
		t.Errorf("Latency = %+v, want nil after update without latency", info.Latency)
	}
	if len(info.LastWarnings) != 1 || info.LastWarnings[0].Kind != bbo.WarnBadSentinel {
		t.Errorf("LastWarnings = %v, want one BadSentinel", info.LastWarnings)
	}
	if info.PacketCount != 2 {
		t.Errorf("PacketCount = %d, want 2", info.PacketCount)
	}
}

func TestQuote_IsStale(t *testing.T) {
	q := NewQuote("AAPL")

	if !q.IsStale(time.Second) {
		t.Error("new quote should be stale")
	}

	q.Update(testPacket("AAPL", 1, 2), nil, nil)
	if q.IsStale(time.Minute) {
		t.Error("freshly updated quote should not be stale")
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager()

	q1 := m.GetOrCreate("AAPL")
	q2 := m.GetOrCreate("AAPL")
	if q1 != q2 {
		t.Error("GetOrCreate returned different quotes for the same symbol")
	}

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	if m.Get("MSFT") != nil {
		t.Error("Get() returned quote for unknown symbol")
	}
}

func TestManager_GetAllSorted(t *testing.T) {
	m := NewManager()
	m.GetOrCreate("MSFT")
	m.GetOrCreate("AAPL")
	m.GetOrCreate("INTC")

	all := m.GetAll()
	if len(all) != 3 {
		t.Fatalf("len(GetAll()) = %d, want 3", len(all))
	}

	want := []string{"AAPL", "INTC", "MSFT"}
	for i, q := range all {
		if q.Symbol != want[i] {
			t.Errorf("GetAll()[%d].Symbol = %q, want %q", i, q.Symbol, want[i])
		}
	}
}

func TestManager_PruneStale(t *testing.T) {
	m := NewManager()
	m.GetOrCreate("STALE") // never updated
	fresh := m.GetOrCreate("FRESH")
	fresh.Update(testPacket("FRESH", 1, 2), nil, nil)

	pruned := m.PruneStale(time.Minute)
	if pruned != 1 {
		t.Errorf("PruneStale() = %d, want 1", pruned)
	}
	if m.Get("STALE") != nil {
		t.Error("stale symbol not removed")
	}
	if m.Get("FRESH") == nil {
		t.Error("fresh symbol removed")
	}
}

func TestManager_Remove(t *testing.T) {
	m := NewManager()
	m.GetOrCreate("AAPL")
	m.Remove("AAPL")

	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}
