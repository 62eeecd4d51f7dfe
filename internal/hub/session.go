package hub

import (
	"net"
	"strconv"
	"time"

	"github.com/kb9vy/nettrxd/internal/wire"
)

// SessionState is one of the three states in spec.md §3/§4.2. There is no
// separate version-wait state: ProtoVer is hub->client only (no real
// client ever echoes it back), so a session goes straight from DISC to
// either AUTH_WAIT (auth enabled) or READY (auth disabled) on accept.
type SessionState int

const (
	StateDisc SessionState = iota
	StateAuthWait
	StateReady
)

func (s SessionState) String() string {
	switch s {
	case StateDisc:
		return "DISC"
	case StateAuthWait:
		return "AUTH_WAIT"
	case StateReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// SessionKey is the (host, port) peer-map key from spec.md §3: "at most
// one session per (host, port) pair".
type SessionKey struct {
	Host string
	Port int
}

func (k SessionKey) String() string {
	return net.JoinHostPort(k.Host, strconv.Itoa(k.Port))
}

// Session is one TCP connection on the hub (spec.md §3 "Session").
//
// Every field here is only ever touched from the Hub's single event loop
// goroutine (see hub.go); the only other goroutine that references a
// Session is its own reader, which reads immutable fields (Key, conn) and
// drives the reassembler, which only it uses.
type Session struct {
	Key   SessionKey
	ID    string // stable opaque id for log correlation and the status API
	conn  net.Conn
	State SessionState

	nonce [32]byte

	RxCodecName    string
	RxCodecOptions []wire.CodecOption
	TxCodecName    string
	TxCodecOptions []wire.CodecOption

	LastMsg time.Time

	SquelchOpen bool
	TxCtrlMode  wire.TxCtrlMode
	Blocked     bool

	reassembler *wire.Reassembler

	audioWatchdogGen   uint64
	audioWatchdogTimer *time.Timer

	squelchWatchdogGen   uint64
	squelchWatchdogTimer *time.Timer
}

// sendWriteTimeout bounds how long a single Write may block the hub's
// event-loop goroutine. The hub is single-threaded cooperative (spec.md
// §5): a peer sitting on a full TCP receive window must not be allowed
// to stall every other session's reads, broadcasts, and timers, so a
// stalled write is treated exactly like a hard write error after this
// deadline passes.
const sendWriteTimeout = 2 * time.Second

// send encodes and writes msg directly to the peer. It is only ever
// called from the hub's event loop goroutine. A write that can't
// complete within sendWriteTimeout — a full send buffer per spec.md §5 —
// returns an error just as a hard socket error would, so the caller can
// drop that session without blocking the rest of the hub.
func (s *Session) send(msg wire.Message) error {
	buf := wire.Encode(msg)
	if err := s.conn.SetWriteDeadline(time.Now().Add(sendWriteTimeout)); err != nil {
		return err
	}
	_, err := s.conn.Write(buf)
	return err
}

func (s *Session) close() {
	_ = s.conn.Close()
	if s.audioWatchdogTimer != nil {
		s.audioWatchdogTimer.Stop()
	}
	if s.squelchWatchdogTimer != nil {
		s.squelchWatchdogTimer.Stop()
	}
	s.State = StateDisc
}
