package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/kb9vy/nettrxd/internal/nettrxerr"
)

// MinReassemblyBuffer is the minimum receive-buffer size spec.md §3
// requires ("reassembly buffer (>= 4 kB)").
const MinReassemblyBuffer = 4096

// RawFrame is one fully reassembled message, still undecoded.
type RawFrame struct {
	Type    Type
	Payload []byte
}

// Reassembler implements the §4.1 framing state machine: accumulate bytes
// until `received == expected`, then either dispatch a header-only
// message or extend `expected` to the declared payload size. It is driven
// by repeated calls to Feed as bytes arrive from the socket; it keeps no
// reference to the supplied slices beyond the call.
type Reassembler struct {
	buf      []byte
	expected uint32
	received uint32
}

// NewReassembler allocates a Reassembler with the given buffer capacity.
// bufSize is clamped up to MinReassemblyBuffer.
func NewReassembler(bufSize int) *Reassembler {
	if bufSize < MinReassemblyBuffer {
		bufSize = MinReassemblyBuffer
	}
	return &Reassembler{
		buf:      make([]byte, bufSize),
		expected: HeaderSize,
		received: 0,
	}
}

// Feed consumes newly read bytes and returns any messages that became
// complete as a result. On protocol error (size < 8, or a payload that
// would overflow the reassembly buffer) it returns a nettrxerr-wrapped
// error and the connection must be closed; no further bytes from that
// connection should be fed.
func (r *Reassembler) Feed(data []byte) ([]RawFrame, error) {
	var frames []RawFrame
	for len(data) > 0 {
		need := r.expected - r.received
		n := uint32(len(data))
		if n > need {
			n = need
		}
		copy(r.buf[r.received:r.received+n], data[:n])
		r.received += n
		data = data[n:]

		if r.received != r.expected {
			continue
		}

		if r.expected == HeaderSize {
			typ := Type(binary.LittleEndian.Uint32(r.buf[0:4]))
			size := binary.LittleEndian.Uint32(r.buf[4:8])
			switch {
			case size == HeaderSize:
				frames = append(frames, RawFrame{Type: typ})
				r.received = 0
				r.expected = HeaderSize
			case size > HeaderSize:
				if int(size) > len(r.buf) {
					return frames, nettrxerr.New(nettrxerr.KindBufferOverflowRecv, "wire.Reassembler.Feed",
						fmt.Errorf("message size %d exceeds reassembly buffer %d", size, len(r.buf)))
				}
				r.expected = size
			default:
				return frames, nettrxerr.New(nettrxerr.KindProtocolFormat, "wire.Reassembler.Feed",
					fmt.Errorf("message size %d smaller than header size %d", size, HeaderSize))
			}
			continue
		}

		typ := Type(binary.LittleEndian.Uint32(r.buf[0:4]))
		payload := make([]byte, r.expected-HeaderSize)
		copy(payload, r.buf[HeaderSize:r.expected])
		frames = append(frames, RawFrame{Type: typ, Payload: payload})
		r.received = 0
		r.expected = HeaderSize
	}
	return frames, nil
}
