package bbo

import (
	"fmt"
	"strings"
	"time"
)

// Wire format constants
const (
	// PacketSize is the fixed on-wire size of one BBO record: 44 bytes of
	// data followed by a 4-byte padding sentinel.
	PacketSize = 48

	// SymbolSize is the width of the symbol field in bytes.
	SymbolSize = 8

	// PaddingSentinel is the value the hardware writes into bytes 44-47.
	PaddingSentinel = 0xDEADBEEF

	// DefaultClockPeriodNs is the timestamp clock period in nanoseconds,
	// assuming a 250 MHz fabric clock.
	DefaultClockPeriodNs = 4
)

// Packet is one decoded BBO record. All integer fields are little-endian
// uint32 on the wire; the four Ts* fields are free-running hardware cycle
// counters that wrap modulo 2^32.
type Packet struct {
	Symbol [SymbolSize]byte // ASCII, zero-padded, not necessarily null-terminated

	BidPrice uint32
	BidSize  uint32
	AskPrice uint32
	AskSize  uint32
	Spread   uint32

	TsParse     uint32 // T1: ITCH parse
	TsFifoWrite uint32 // T2: CDC FIFO write
	TsFifoRead  uint32 // T3: BBO FIFO read
	TsTxStart   uint32 // T4: TX start

	Padding uint32 // expected to equal PaddingSentinel

	// Metadata, not part of the wire format
	ReceivedAt time.Time
}

// SymbolString renders the symbol field for display: trailing zero bytes are
// trimmed and any non-printable byte is substituted with '.'.
func (p *Packet) SymbolString() string {
	raw := p.Symbol[:]
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}

	var b strings.Builder
	for _, c := range raw[:end] {
		if c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// LatencyReport is the parse-to-transmit latency derived from the T1 and T4
// timestamps of a single packet.
type LatencyReport struct {
	Cycles      uint32 // T4 - T1, modulo 2^32
	Nanoseconds uint64 // Cycles * clock period
}

// Duration returns the latency as a time.Duration.
func (r LatencyReport) Duration() time.Duration {
	return time.Duration(r.Nanoseconds) * time.Nanosecond
}

// WarningKind classifies a non-fatal anomaly detected during decode.
type WarningKind int

const (
	// WarnBadSentinel means the padding field did not equal PaddingSentinel.
	WarnBadSentinel WarningKind = iota
	// WarnNonPrintableSymbol means a symbol byte was neither printable ASCII
	// nor zero padding.
	WarnNonPrintableSymbol
	// WarnLatencyOverflow means the cycles-to-nanoseconds conversion exceeded
	// 32 bits.
	WarnLatencyOverflow
)

// Warning is a non-fatal decode anomaly. Warnings never invalidate the
// decoded record; callers decide whether to log, alert, or ignore them.
type Warning struct {
	Kind  WarningKind
	Value uint64 // kind-specific: observed padding, offending byte offset, or overflowed cycle count
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnBadSentinel:
		return fmt.Sprintf("invalid padding 0x%08X (expected 0x%08X)", uint32(w.Value), uint32(PaddingSentinel))
	case WarnNonPrintableSymbol:
		return fmt.Sprintf("non-printable byte in symbol at offset %d", w.Value)
	case WarnLatencyOverflow:
		return fmt.Sprintf("latency %d cycles overflows 32-bit nanoseconds", w.Value)
	default:
		return fmt.Sprintf("unknown warning kind %d", int(w.Kind))
	}
}

// SizeMismatchError is returned when a buffer of the wrong length is handed
// to Decode. It is the only fatal decode error: the caller should discard the
// buffer and resynchronize with its transport.
type SizeMismatchError struct {
	Expected int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("bbo: packet size mismatch: got %d bytes, want %d", e.Actual, e.Expected)
}
