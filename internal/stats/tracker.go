package stats

import (
	"sync"
	"time"

	"bbo-monitor/internal/bbo"
)

// Constants for anomaly tracking
const (
	// anomalyWindowDuration is the time window for recent anomaly calculation
	anomalyWindowDuration = time.Minute
)

// PacketEvent records a packet reception event for sliding window tracking
type PacketEvent struct {
	Timestamp time.Time
	Received  uint64 // packets received in this event
	Anomalous uint64 // packets with sentinel mismatches in this event
}

// SymbolStats tracks statistics for a single symbol
type SymbolStats struct {
	Symbol       string
	PacketCount  uint64
	BadSentinels uint64
	WarningCount uint64
	LastPacket   time.Time

	// Latency aggregates over packets where latency was available
	LatencySamples uint64
	LatencyLastNs  uint64
	LatencyMinNs   uint64
	LatencyMaxNs   uint64
	latencySumNs   uint64

	packetsInWindow []time.Time   // For rate calculation
	anomalyWindow   []PacketEvent // For sliding window sentinel-error calculation
	mu              sync.RWMutex
}

// GetInfo returns a snapshot of the stats (no mutex needed on the copy).
// Readers running concurrently with RecordPacket must go through this rather
// than reading the struct fields directly.
func (s *SymbolStats) GetInfo() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Info{
		Symbol:         s.Symbol,
		PacketCount:    s.PacketCount,
		BadSentinels:   s.BadSentinels,
		WarningCount:   s.WarningCount,
		LastPacket:     s.LastPacket,
		LatencySamples: s.LatencySamples,
		LatencyLastNs:  s.LatencyLastNs,
		LatencyMinNs:   s.LatencyMinNs,
		LatencyMaxNs:   s.LatencyMaxNs,
	}
}

// Info is a snapshot of per-symbol statistics
type Info struct {
	Symbol       string
	PacketCount  uint64
	BadSentinels uint64
	WarningCount uint64
	LastPacket   time.Time

	LatencySamples uint64
	LatencyLastNs  uint64
	LatencyMinNs   uint64
	LatencyMaxNs   uint64
}

// Tracker tracks packet statistics for all symbols
type Tracker struct {
	symbols    map[string]*SymbolStats
	rateWindow time.Duration
	mu         sync.RWMutex
}

// NewTracker creates a new stats tracker
func NewTracker() *Tracker {
	return &Tracker{
		symbols:    make(map[string]*SymbolStats),
		rateWindow: time.Second, // Calculate rate over 1 second window
	}
}

// RecordPacket records a decoded packet for statistics tracking
func (t *Tracker) RecordPacket(symbol string, warnings []bbo.Warning, latency *bbo.LatencyReport) {
	t.mu.Lock()
	stats, exists := t.symbols[symbol]
	if !exists {
		stats = &SymbolStats{Symbol: symbol}
		t.symbols[symbol] = stats
	}
	t.mu.Unlock()

	stats.mu.Lock()
	defer stats.mu.Unlock()

	now := time.Now()
	stats.PacketCount++
	stats.LastPacket = now

	// Add to rate window
	stats.packetsInWindow = append(stats.packetsInWindow, now)

	// Clean old packets from window
	cutoff := now.Add(-t.rateWindow)
	newWindow := stats.packetsInWindow[:0]
	for _, pt := range stats.packetsInWindow {
		if pt.After(cutoff) {
			newWindow = append(newWindow, pt)
		}
	}
	stats.packetsInWindow = newWindow

	var badSentinel uint64
	for _, w := range warnings {
		stats.WarningCount++
		if w.Kind == bbo.WarnBadSentinel {
			badSentinel = 1
		}
	}
	stats.BadSentinels += badSentinel

	// Record event for sliding window anomaly tracking
	stats.anomalyWindow = append(stats.anomalyWindow, PacketEvent{
		Timestamp: now,
		Received:  1,
		Anomalous: badSentinel,
	})

	// Clean old events from anomaly window
	anomalyCutoff := now.Add(-anomalyWindowDuration)
	newAnomalyWindow := stats.anomalyWindow[:0]
	for _, evt := range stats.anomalyWindow {
		if evt.Timestamp.After(anomalyCutoff) {
			newAnomalyWindow = append(newAnomalyWindow, evt)
		}
	}
	stats.anomalyWindow = newAnomalyWindow

	if latency != nil {
		ns := latency.Nanoseconds
		stats.LatencyLastNs = ns
		stats.latencySumNs += ns
		if stats.LatencySamples == 0 || ns < stats.LatencyMinNs {
			stats.LatencyMinNs = ns
		}
		if ns > stats.LatencyMaxNs {
			stats.LatencyMaxNs = ns
		}
		stats.LatencySamples++
	}
}

// GetSymbolStats returns stats for a specific symbol
func (t *Tracker) GetSymbolStats(symbol string) *SymbolStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.symbols[symbol]
}

// GetPacketRate returns packets per second for a symbol
func (t *Tracker) GetPacketRate(symbol string) float64 {
	t.mu.RLock()
	stats := t.symbols[symbol]
	t.mu.RUnlock()

	if stats == nil {
		return 0
	}

	stats.mu.RLock()
	defer stats.mu.RUnlock()

	// Clean old packets and count
	now := time.Now()
	cutoff := now.Add(-t.rateWindow)
	count := 0
	for _, pt := range stats.packetsInWindow {
		if pt.After(cutoff) {
			count++
		}
	}

	return float64(count) / t.rateWindow.Seconds()
}

// GetSentinelErrorPercentage returns the cumulative share of packets with a
// sentinel mismatch for a symbol
func (t *Tracker) GetSentinelErrorPercentage(symbol string) float64 {
	t.mu.RLock()
	stats := t.symbols[symbol]
	t.mu.RUnlock()

	if stats == nil {
		return 0
	}

	stats.mu.RLock()
	defer stats.mu.RUnlock()

	if stats.PacketCount == 0 {
		return 0
	}

	return float64(stats.BadSentinels) / float64(stats.PacketCount) * 100
}

// GetRecentSentinelErrorPercentage returns the sentinel mismatch percentage
// for the last minute
func (t *Tracker) GetRecentSentinelErrorPercentage(symbol string) float64 {
	t.mu.RLock()
	stats := t.symbols[symbol]
	t.mu.RUnlock()

	if stats == nil {
		return 0
	}

	stats.mu.RLock()
	defer stats.mu.RUnlock()

	// Sum up received and anomalous from the sliding window
	now := time.Now()
	cutoff := now.Add(-anomalyWindowDuration)

	var totalReceived, totalAnomalous uint64
	for _, evt := range stats.anomalyWindow {
		if evt.Timestamp.After(cutoff) {
			totalReceived += evt.Received
			totalAnomalous += evt.Anomalous
		}
	}

	if totalReceived == 0 {
		return 0
	}

	return float64(totalAnomalous) / float64(totalReceived) * 100
}

// GetMeanLatencyNs returns the mean observed latency in nanoseconds for a
// symbol, or 0 when no packet carried a usable latency
func (t *Tracker) GetMeanLatencyNs(symbol string) uint64 {
	t.mu.RLock()
	stats := t.symbols[symbol]
	t.mu.RUnlock()

	if stats == nil {
		return 0
	}

	stats.mu.RLock()
	defer stats.mu.RUnlock()

	if stats.LatencySamples == 0 {
		return 0
	}
	return stats.latencySumNs / stats.LatencySamples
}

// ResetSymbolStats clears all statistics for a specific symbol
func (t *Tracker) ResetSymbolStats(symbol string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if stats, exists := t.symbols[symbol]; exists {
		stats.mu.Lock()
		stats.PacketCount = 0
		stats.BadSentinels = 0
		stats.WarningCount = 0
		stats.LatencySamples = 0
		stats.LatencyLastNs = 0
		stats.LatencyMinNs = 0
		stats.LatencyMaxNs = 0
		stats.latencySumNs = 0
		stats.packetsInWindow = nil
		stats.anomalyWindow = nil
		stats.mu.Unlock()
	}
}

// ResetAllStats clears all tracked data
func (t *Tracker) ResetAllStats() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.symbols = make(map[string]*SymbolStats)
}

// GetAllSymbols returns all tracked symbols
func (t *Tracker) GetAllSymbols() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	symbols := make([]string, 0, len(t.symbols))
	for s := range t.symbols {
		symbols = append(symbols, s)
	}
	return symbols
}
