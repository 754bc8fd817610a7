package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"bbo-monitor/internal/bbo"

	"github.com/sirupsen/logrus"
)

// DefaultReadBackoff is how long the device source waits after a zero-length
// read before retrying.
const DefaultReadBackoff = 100 * time.Millisecond

// DeviceSource reads 48-byte frames from a character device (the XDMA C2H
// stream) or from a capture file. A zero-length read means no data yet: the
// source backs off and retries. EOF ends the stream; a trailing partial frame
// is logged and dropped rather than delivered.
type DeviceSource struct {
	path    string
	backoff time.Duration
	follow  bool

	r       io.ReadCloser
	frames  chan Frame
	log     *logrus.Entry
	mu      sync.Mutex
	started bool
}

// DeviceOption configures a DeviceSource.
type DeviceOption func(*DeviceSource)

// WithReadBackoff sets the zero-read retry delay.
func WithReadBackoff(d time.Duration) DeviceOption {
	return func(s *DeviceSource) { s.backoff = d }
}

// WithFollow keeps reading past EOF, retrying after the backoff delay. Use it
// for device nodes that report EOF while the hardware has no data queued.
func WithFollow(follow bool) DeviceOption {
	return func(s *DeviceSource) { s.follow = follow }
}

// WithReader substitutes an already-open stream for the device path. Used by
// tests and by replay from stdin.
func WithReader(r io.ReadCloser) DeviceOption {
	return func(s *DeviceSource) { s.r = r }
}

// NewDeviceSource creates a source that reads frames from the given path.
func NewDeviceSource(path string, opts ...DeviceOption) *DeviceSource {
	s := &DeviceSource{
		path:    path,
		backoff: DefaultReadBackoff,
		frames:  make(chan Frame, 1000),
		log:     logrus.WithField("source", "device"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Frames returns the channel of received frames.
func (s *DeviceSource) Frames() <-chan Frame {
	return s.frames
}

// Start opens the device and begins the read loop.
func (s *DeviceSource) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("device source already started")
	}
	s.started = true
	s.mu.Unlock()

	if s.r == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", s.path, err)
		}
		s.r = f
	}

	go s.readFrames(ctx)
	return nil
}

// readFrames reads one frame per iteration until EOF or cancellation.
func (s *DeviceSource) readFrames(ctx context.Context) {
	defer close(s.frames)
	defer s.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		buf := make([]byte, bbo.PacketSize)
		n, err := readFrame(s.r, buf)

		if n == bbo.PacketSize {
			select {
			case s.frames <- Frame{Data: buf, ReceivedAt: time.Now(), Origin: s.path}:
			case <-ctx.Done():
				return
			}
			if errors.Is(err, io.EOF) && !s.follow {
				return
			}
			continue
		}

		switch {
		case n == 0 && (err == nil || (errors.Is(err, io.EOF) && s.follow)):
			// No data queued yet.
			s.log.Debug("no data available, waiting")
			select {
			case <-time.After(s.backoff):
			case <-ctx.Done():
				return
			}

		case errors.Is(err, io.ErrUnexpectedEOF):
			s.log.Warnf("partial read of %d bytes (expected %d), dropping", n, bbo.PacketSize)
			return

		case errors.Is(err, io.EOF):
			return

		default:
			select {
			case <-ctx.Done():
			default:
				s.log.Errorf("read failed: %v", err)
			}
			return
		}
	}
}

// readFrame fills buf from r, tolerating short reads within one frame. It
// returns (0, nil) when the first read returns no data and no error, which is
// how stream devices signal an empty queue. A frame truncated by EOF reports
// io.ErrUnexpectedEOF.
func readFrame(r io.Reader, buf []byte) (int, error) {
	n, err := r.Read(buf)
	if n == 0 {
		return 0, err
	}
	if n < len(buf) {
		m, ferr := io.ReadFull(r, buf[n:])
		n += m
		if errors.Is(ferr, io.EOF) {
			ferr = io.ErrUnexpectedEOF
		}
		return n, ferr
	}
	return n, err
}

// Stop closes the underlying device.
func (s *DeviceSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r != nil {
		s.r.Close()
		s.r = nil
	}
	s.started = false
}
