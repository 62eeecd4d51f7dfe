package sdr

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"github.com/pion/rtp"
	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// NetworkSource reads wideband IQ from a multicast RTP stream, the
// network-tuner transport ka9q-radio's radiod exposes. Each RTP
// packet's payload is a run of interleaved big-endian int16 I/Q pairs,
// grounded on the teacher's audio.go receive loop (same RTP-over-UDP
// transport, same byte order, different payload interpretation: PCM
// there, raw IQ here).
type NetworkSource struct {
	conn   *net.UDPConn
	buf    []byte
	closed bool
}

// NewNetworkSource binds a multicast UDP socket at addr on the given
// interface (nil selects the default). It mirrors the teacher's
// setupDataSocket: SO_REUSEADDR/SO_REUSEPORT so multiple local
// processes can share the feed, a 1MB receive buffer, and an explicit
// multicast group join.
func NewNetworkSource(addr *net.UDPAddr, iface *net.Interface) (*NetworkSource, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
					sockErr = fmt.Errorf("sdr: SO_REUSEPORT: %w", err)
					return
				}
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					sockErr = fmt.Errorf("sdr: SO_REUSEADDR: %w", err)
					return
				}
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", addr.String())
	if err != nil {
		return nil, fmt.Errorf("sdr: listen %s: %w", addr, err)
	}
	conn := pc.(*net.UDPConn)
	if err := conn.SetReadBuffer(1024 * 1024); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sdr: set read buffer: %w", err)
	}

	p := ipv4.NewPacketConn(conn)
	if err := p.JoinGroup(iface, addr); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sdr: join multicast group %s: %w", addr, err)
	}

	return &NetworkSource{conn: conn, buf: make([]byte, 65536)}, nil
}

// Read blocks for the next RTP packet and decodes its payload to IQ
// samples. Packets too short to be RTP, or that fail to parse, are
// skipped rather than returned as errors — other senders can share the
// multicast group.
func (n *NetworkSource) Read() ([]complex128, error) {
	for {
		nread, _, err := n.conn.ReadFromUDP(n.buf)
		if err != nil {
			return nil, err
		}
		if nread < 12 {
			continue
		}
		pkt := &rtp.Packet{}
		if err := pkt.Unmarshal(n.buf[:nread]); err != nil {
			continue
		}
		return bytesToIQ(pkt.Payload), nil
	}
}

func (n *NetworkSource) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true
	return n.conn.Close()
}

// bytesToIQ unpacks interleaved big-endian int16 I/Q pairs into
// normalized complex samples in [-1, 1).
func bytesToIQ(b []byte) []complex128 {
	n := len(b) / 4
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		iRaw := int16(b[i*4])<<8 | int16(b[i*4+1])
		qRaw := int16(b[i*4+2])<<8 | int16(b[i*4+3])
		out[i] = complex(float64(iRaw)/32768.0, float64(qRaw)/32768.0)
	}
	return out
}
