// Package bbo decodes the 48-byte BBO telemetry records emitted by the FPGA
// market-data pipeline and derives per-packet latency diagnostics.
package bbo

import "time"

// Decoder is the single entry point for turning raw buffers into decoded
// records. It holds only configuration, never per-call state, so one Decoder
// is safe for concurrent use by any number of callers.
type Decoder struct {
	// ClockPeriodNs is the timestamp clock period used for latency
	// conversion. Zero means DefaultClockPeriodNs.
	ClockPeriodNs uint32
}

// NewDecoder creates a Decoder with the given clock period in nanoseconds.
// Pass 0 to use the 250 MHz default.
func NewDecoder(clockPeriodNs uint32) *Decoder {
	return &Decoder{ClockPeriodNs: clockPeriodNs}
}

// Decode interprets one raw frame. A buffer of any length other than
// PacketSize fails with *SizeMismatchError before any field offset is read.
// Any 48-byte buffer decodes successfully: anomalies (bad sentinel,
// non-printable symbol, latency overflow) are returned as warnings alongside
// the record, never as errors. The latency report is nil when latency is
// unavailable for this packet.
//
// The returned Packet is freshly allocated per call and retains no reference
// to data.
func (d *Decoder) Decode(data []byte) (*Packet, *LatencyReport, []Warning, error) {
	if len(data) != PacketSize {
		return nil, nil, nil, &SizeMismatchError{Expected: PacketSize, Actual: len(data)}
	}

	p := decodeFields(data)
	p.ReceivedAt = time.Now()

	warnings := validate(&p)

	period := d.ClockPeriodNs
	if period == 0 {
		period = DefaultClockPeriodNs
	}
	report, latWarnings := ComputeLatency(&p, period)
	warnings = append(warnings, latWarnings...)

	return &p, report, warnings, nil
}
