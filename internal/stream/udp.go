package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"bbo-monitor/internal/bbo"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
)

// DefaultUDPPort is the port bench rigs use when mirroring the FPGA C2H
// stream onto the network.
const DefaultUDPPort = 4800

// UDPSource receives frames over UDP, one 48-byte record per datagram. The
// datagram boundary provides the framing, so no resynchronization is needed;
// datagrams of the wrong size are counted and dropped.
type UDPSource struct {
	port  int
	group string // optional multicast group to join

	packets chan Frame
	conn    *ipv4.PacketConn
	rawConn net.PacketConn
	log     *logrus.Entry
	mu      sync.RWMutex
	started bool
}

// NewUDPSource creates a source listening on the given UDP port. A non-empty
// group is joined as a multicast group on every eligible interface.
func NewUDPSource(port int, group string) *UDPSource {
	if port == 0 {
		port = DefaultUDPPort
	}
	return &UDPSource{
		port:    port,
		group:   group,
		packets: make(chan Frame, 1000),
		log:     logrus.WithField("source", "udp"),
	}
}

// Frames returns the channel of received frames.
func (s *UDPSource) Frames() <-chan Frame {
	return s.packets
}

// Start begins listening for BBO datagrams.
func (s *UDPSource) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("udp source already started")
	}
	s.started = true
	s.mu.Unlock()

	conn, err := net.ListenPacket("udp4", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	s.rawConn = conn
	s.conn = ipv4.NewPacketConn(conn)

	if err := s.conn.SetControlMessage(ipv4.FlagDst, true); err != nil {
		// Non-fatal on some platforms
		s.log.Warnf("could not set control message: %v", err)
	}

	if s.group != "" {
		s.joinMulticastGroup(s.group)
	}

	go s.readPackets(ctx)

	return nil
}

// joinMulticastGroup joins the group on every up, multicast-capable,
// non-loopback interface.
func (s *UDPSource) joinMulticastGroup(group string) {
	groupIP := net.ParseIP(group)
	if groupIP == nil {
		s.log.Warnf("invalid multicast group %q", group)
		return
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		s.log.Warnf("could not get network interfaces: %v", err)
		return
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if err := s.conn.JoinGroup(&iface, &net.UDPAddr{IP: groupIP}); err != nil {
			// Silently ignore - some interfaces may not support multicast
		}
	}
}

// readPackets continuously reads datagrams from the UDP socket.
func (s *UDPSource) readPackets(ctx context.Context) {
	defer close(s.packets)
	buf := make([]byte, 1500)

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		default:
		}

		n, _, src, err := s.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}

		if n != bbo.PacketSize {
			s.log.Debugf("dropping %d-byte datagram from %v", n, src)
			continue
		}

		data := make([]byte, bbo.PacketSize)
		copy(data, buf[:n])

		frame := Frame{Data: data, ReceivedAt: time.Now()}
		if src != nil {
			frame.Origin = src.String()
		}

		// Try to send frame, drop if channel is full
		select {
		case s.packets <- frame:
		default:
		}
	}
}

// Stop stops the source.
func (s *UDPSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rawConn != nil {
		s.rawConn.Close()
		s.rawConn = nil
	}
	s.started = false
}
