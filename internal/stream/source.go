// Package stream supplies exactly-framed 48-byte BBO buffers from a device,
// capture file, or network mirror. Retry, backoff, and framing live here; the
// decode engine only ever sees a buffer it was asked to decode.
package stream

import (
	"context"
	"time"
)

// Frame is one raw buffer handed to the decoder. Data is owned by the
// receiver of the frame; sources never reuse it after send.
type Frame struct {
	Data       []byte
	ReceivedAt time.Time
	Origin     string // device path or remote address, for diagnostics
}

// Source produces frames until its context is cancelled or the underlying
// stream ends. The frames channel is closed when the source stops.
type Source interface {
	Frames() <-chan Frame
	Start(ctx context.Context) error
	Stop()
}
