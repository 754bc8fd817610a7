package quote

import (
	"sync"
	"time"

	"bbo-monitor/internal/bbo"
)

// Quote holds the most recent decoded state for a single symbol
type Quote struct {
	Symbol string

	BidPrice uint32
	BidSize  uint32
	AskPrice uint32
	AskSize  uint32
	Spread   uint32

	TsParse     uint32
	TsFifoWrite uint32
	TsFifoRead  uint32
	TsTxStart   uint32

	Latency      *bbo.LatencyReport // nil when latency was unavailable
	LastWarnings []bbo.Warning
	LastPacket   time.Time
	PacketCount  uint64

	mu sync.RWMutex
}

// NewQuote creates an empty quote for the given symbol
func NewQuote(symbol string) *Quote {
	return &Quote{Symbol: symbol}
}

// Update replaces the quote state with a freshly decoded packet.
func (q *Quote) Update(p *bbo.Packet, latency *bbo.LatencyReport, warnings []bbo.Warning) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.BidPrice = p.BidPrice
	q.BidSize = p.BidSize
	q.AskPrice = p.AskPrice
	q.AskSize = p.AskSize
	q.Spread = p.Spread
	q.TsParse = p.TsParse
	q.TsFifoWrite = p.TsFifoWrite
	q.TsFifoRead = p.TsFifoRead
	q.TsTxStart = p.TsTxStart
	q.Latency = latency
	q.LastWarnings = warnings
	q.LastPacket = p.ReceivedAt
	if q.LastPacket.IsZero() {
		q.LastPacket = time.Now()
	}
	q.PacketCount++
}

// IsStale returns true if the symbol hasn't received data for the given duration
func (q *Quote) IsStale(timeout time.Duration) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.LastPacket.IsZero() {
		return true
	}
	return time.Since(q.LastPacket) > timeout
}

// GetInfo returns a snapshot of the quote (no mutex needed on the copy)
func (q *Quote) GetInfo() Info {
	q.mu.RLock()
	defer q.mu.RUnlock()

	info := Info{
		Symbol:      q.Symbol,
		BidPrice:    q.BidPrice,
		BidSize:     q.BidSize,
		AskPrice:    q.AskPrice,
		AskSize:     q.AskSize,
		Spread:      q.Spread,
		TsParse:     q.TsParse,
		TsFifoWrite: q.TsFifoWrite,
		TsFifoRead:  q.TsFifoRead,
		TsTxStart:   q.TsTxStart,
		LastPacket:  q.LastPacket,
		PacketCount: q.PacketCount,
	}
	if q.Latency != nil {
		latency := *q.Latency
		info.Latency = &latency
	}
	info.LastWarnings = append(info.LastWarnings, q.LastWarnings...)
	return info
}

// Info is a snapshot of quote state
type Info struct {
	Symbol string

	BidPrice uint32
	BidSize  uint32
	AskPrice uint32
	AskSize  uint32
	Spread   uint32

	TsParse     uint32
	TsFifoWrite uint32
	TsFifoRead  uint32
	TsTxStart   uint32

	Latency      *bbo.LatencyReport
	LastWarnings []bbo.Warning
	LastPacket   time.Time
	PacketCount  uint64
}
