// Package console renders decoded packets as plain text, one block per
// packet, in the classic receiver output format. All formatting lives here;
// the decode engine itself emits no text.
package console

import (
	"fmt"
	"io"
	"strings"

	"bbo-monitor/internal/bbo"
)

// Printer writes decoded packets to w with a running packet index.
type Printer struct {
	w     io.Writer
	count int
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes one packet: the quote line, a timestamp/latency line when
// latency is available, and one line per warning.
func (p *Printer) Print(pkt *bbo.Packet, latency *bbo.LatencyReport, warnings []bbo.Warning) {
	p.count++

	fmt.Fprintf(p.w, "[%4d] Symbol: %-8s | Bid: %8d @ %8d | Ask: %8d @ %8d | Spread: %d\n",
		p.count,
		pkt.SymbolString(),
		pkt.BidPrice, pkt.BidSize,
		pkt.AskPrice, pkt.AskSize,
		pkt.Spread)

	if latency != nil {
		fmt.Fprintf(p.w, "       Timestamps: T1=%d T2=%d T3=%d T4=%d | Latency: %d ns\n",
			pkt.TsParse, pkt.TsFifoWrite, pkt.TsFifoRead, pkt.TsTxStart,
			latency.Nanoseconds)
	}

	for _, w := range warnings {
		fmt.Fprintf(p.w, "       WARNING: %s\n", w)
	}
}

// Count returns the number of packets printed so far.
func (p *Printer) Count() int {
	return p.count
}

// Hexdump formats data as 16-byte rows of hex with an ASCII gutter,
// substituting '.' for non-printable bytes.
func Hexdump(data []byte) string {
	var b strings.Builder

	for i := 0; i < len(data); i += 16 {
		fmt.Fprintf(&b, "%04x: ", i)
		for j := 0; j < 16 && i+j < len(data); j++ {
			fmt.Fprintf(&b, "%02x ", data[i+j])
		}
		b.WriteByte(' ')
		for j := 0; j < 16 && i+j < len(data); j++ {
			c := data[i+j]
			if c >= 32 && c < 127 {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}
