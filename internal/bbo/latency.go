package bbo

import "math"

// ComputeLatency derives the parse-to-transmit latency from a packet's T1 and
// T4 timestamps. It returns nil when latency is unavailable: the counters are
// only meaningful when TsParse is nonzero and TsTxStart is ahead of it. A zero
// TsParse means the parse stage never stamped the packet; TsTxStart <= TsParse
// means the counters are not ordered for this packet's traversal.
//
// The cycle difference uses unsigned modulo-2^32 subtraction, which stays
// correct across a single counter wrap within one packet's transit. If the
// nanosecond product exceeds 32 bits, a WarnLatencyOverflow warning is
// returned alongside the (exact, 64-bit) report.
func ComputeLatency(p *Packet, clockPeriodNs uint32) (*LatencyReport, []Warning) {
	if p.TsParse == 0 || p.TsTxStart <= p.TsParse {
		return nil, nil
	}

	cycles := p.TsTxStart - p.TsParse
	ns := uint64(cycles) * uint64(clockPeriodNs)

	var warnings []Warning
	if ns > math.MaxUint32 {
		warnings = append(warnings, Warning{Kind: WarnLatencyOverflow, Value: uint64(cycles)})
	}

	return &LatencyReport{Cycles: cycles, Nanoseconds: ns}, warnings
}
