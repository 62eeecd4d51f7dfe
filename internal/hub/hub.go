// Package hub implements the NetTrx hub: admission, the session FSM's
// server half, master election, squelch coordination, and the timers that
// drive all of it (spec.md §4.2-§4.3, components C/D/E).
//
// The hub and its sessions are single-threaded cooperative, per spec.md
// §5: a single goroutine (Hub.Run) is the only place that ever mutates
// PeerMap, master, or any Session field. Per-session socket reads happen
// on their own goroutine and are handed to the loop as events over a
// channel, and timers post events the same way — so the loop never needs
// a mutex.
package hub

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kb9vy/nettrxd/internal/auth"
	"github.com/kb9vy/nettrxd/internal/config"
	"github.com/kb9vy/nettrxd/internal/logging"
	"github.com/kb9vy/nettrxd/internal/nettrxerr"
	"github.com/kb9vy/nettrxd/internal/wire"
)

// ProtocolMajor/Minor are the current NetTrx version (spec.md §6).
const (
	ProtocolMajor uint16 = 2
	ProtocolMinor uint16 = 7
)

// DefaultHeartbeatPeriod is how often a READY session is sent a Heartbeat
// by the heartbeat sweep if it hasn't been disconnected for inactivity.
const DefaultHeartbeatPeriod = 10 * time.Second

type eventKind int

const (
	evNewConn eventKind = iota
	evMessage
	evConnError
	evHeartbeatSweep
	evAudioWatchdog
	evSquelchWatchdog
)

type event struct {
	kind eventKind
	key  SessionKey
	msg  wire.Message
	err  error
	conn net.Conn
	gen  uint64
}

// Hub is the routing/master-election/squelch-coordination server.
type Hub struct {
	cfg    *config.HubConfig
	log    interface {
		Infof(string, ...interface{})
		Warnf(string, ...interface{})
		Errorf(string, ...interface{})
	}
	listener net.Listener
	peers    *PeerMap
	master   *Session
	eventCh  chan event

	metrics   *Metrics
	telemetry *Telemetry
	geo       *GeoLookup
	admission *Admission

	ready   chan struct{}
	closing bool
}

// New constructs a Hub bound to the given configuration. Call Run to serve.
func New(cfg *config.HubConfig) *Hub {
	return &Hub{
		cfg:       cfg,
		log:       logging.For("hub"),
		peers:     newPeerMap(),
		eventCh:   make(chan event, 256),
		metrics:   NewMetrics(),
		telemetry: NewTelemetry(&cfg.MQTT),
		geo:       NewGeoLookup(cfg.GeoIPDBPath),
		admission: NewAdmission(cfg.ConnRateLimit, cfg.CmdRateLimit),
		ready:     make(chan struct{}),
	}
}

// Addr blocks until the listener is bound and returns its address. Mainly
// useful in tests that start the Hub with ListenPort 0 and need the
// OS-assigned port.
func (h *Hub) Addr() net.Addr {
	<-h.ready
	return h.listener.Addr()
}

// postEvent is safe to call from any goroutine (timers, readers).
func (h *Hub) postEvent(e event) {
	defer func() { recover() }() // eventCh may be closed during shutdown
	h.eventCh <- e
}

// Run starts accepting connections and serves the event loop until ctx is
// canceled.
func (h *Hub) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(h.cfg.ListenPort))
	if err != nil {
		return nettrxerr.New(nettrxerr.KindTransportIO, "hub.Run", err)
	}
	h.listener = ln
	close(h.ready)
	h.log.Infof("hub listening on %s (auth=%v)", ln.Addr(), h.cfg.AuthKey != "")

	go h.acceptLoop()

	sweep := time.NewTicker(h.cfg.HeartbeatTimeout)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closing = true
			_ = h.listener.Close()
			close(h.eventCh)
			return nil
		case <-sweep.C:
			h.handleHeartbeatSweep()
		case e, ok := <-h.eventCh:
			if !ok {
				return nil
			}
			h.handleEvent(e)
		}
	}
}

func (h *Hub) acceptLoop() {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			if h.closing {
				return
			}
			h.log.Warnf("accept error: %v", err)
			continue
		}
		if !h.admission.AllowConnection(conn.RemoteAddr()) {
			h.log.Warnf("rejecting connection from %s: rate limited", conn.RemoteAddr())
			_ = conn.Close()
			continue
		}
		h.postEvent(event{kind: evNewConn, conn: conn})
	}
}

func (h *Hub) handleEvent(e event) {
	switch e.kind {
	case evNewConn:
		h.handleNewConn(e.conn)
	case evMessage:
		h.handleMessage(e.key, e.msg)
	case evConnError:
		h.handleConnError(e.key, e.err)
	case evHeartbeatSweep:
		h.handleHeartbeatSweep()
	case evAudioWatchdog:
		if s, ok := h.peers.get(e.key); ok && s.audioWatchdogGen == e.gen {
			h.onAudioWatchdogFired(s)
		}
	case evSquelchWatchdog:
		if s, ok := h.peers.get(e.key); ok && s.squelchWatchdogGen == e.gen {
			h.onSquelchWatchdogFired(s)
		}
	}
}

func (h *Hub) handleNewConn(conn net.Conn) {
	host, portStr, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		_ = conn.Close()
		return
	}
	port, _ := strconv.Atoi(portStr)
	key := SessionKey{Host: host, Port: port}

	if _, exists := h.peers.get(key); exists {
		// Uniqueness invariant: at most one session per (host, port).
		h.log.Warnf("rejecting duplicate session for %s", key)
		_ = conn.Close()
		return
	}

	s := &Session{
		Key:         key,
		ID:          uuid.NewString(),
		conn:        conn,
		LastMsg:     time.Now(),
		reassembler: wire.NewReassembler(h.cfg.ReassemblyBytes),
	}

	if h.cfg.AuthKey == "" {
		s.State = StateReady
	} else {
		nonce, err := auth.NewNonce()
		if err != nil {
			h.log.Errorf("failed to draw nonce for %s: %v", key, err)
			_ = conn.Close()
			return
		}
		s.nonce = nonce
		s.State = StateAuthWait
	}

	h.peers.put(s)
	h.metrics.SessionConnected()
	if country := h.geo.Lookup(host); country != "" {
		h.log.Infof("connection from %s (%s)", key, country)
	} else {
		h.log.Infof("connection from %s", key)
	}

	if err := s.send(wire.ProtoVer{Major: ProtocolMajor, Minor: ProtocolMinor}); err != nil {
		h.dropSession(s, nettrxerr.New(nettrxerr.KindTransportIO, "handleNewConn", err))
		return
	}

	if h.cfg.AuthKey == "" {
		// No real NetTrx client ever echoes ProtoVer back (it only
		// validates it locally), so there is nothing to wait for here:
		// AuthOk alone admits the session to READY (spec.md §8 scenario 1).
		if err := s.send(wire.AuthOk{}); err != nil {
			h.dropSession(s, nettrxerr.New(nettrxerr.KindTransportIO, "handleNewConn", err))
			return
		}
		h.metrics.SessionReady()
	} else {
		if err := s.send(wire.AuthChallenge{Nonce: s.nonce}); err != nil {
			h.dropSession(s, nettrxerr.New(nettrxerr.KindTransportIO, "handleNewConn", err))
			return
		}
	}

	go h.readLoop(s)
}

// readLoop is the only goroutine, other than Run, that ever touches a
// Session — it reads s.Key/s.conn, which are immutable after
// construction, and drives s.reassembler, which nothing else uses.
// Everything it observes is fed back as an event.
func (h *Hub) readLoop(s *Session) {
	buf := make([]byte, 4096)
	for {
		n, err := s.conn.Read(buf)
		if err != nil {
			h.postEvent(event{kind: evConnError, key: s.Key,
				err: nettrxerr.New(nettrxerr.KindTransportIO, "readLoop", err)})
			return
		}
		frames, ferr := s.reassembler.Feed(buf[:n])
		for _, f := range frames {
			msg, derr := wire.Decode(f.Type, f.Payload)
			if derr != nil {
				h.postEvent(event{kind: evConnError, key: s.Key,
					err: nettrxerr.New(nettrxerr.KindProtocolFormat, "readLoop", derr)})
				return
			}
			h.postEvent(event{kind: evMessage, key: s.Key, msg: msg})
		}
		if ferr != nil {
			h.postEvent(event{kind: evConnError, key: s.Key, err: ferr})
			return
		}
	}
}

func (h *Hub) handleConnError(key SessionKey, err error) {
	s, ok := h.peers.get(key)
	if !ok {
		return
	}
	h.log.Infof("session %s closing: %v", key, err)
	h.dropSession(s, err)
}

// dropSession removes s from the peer map, releasing the floor on its
// behalf if it held it (spec.md §4.7 "If a client disconnects while
// holding the floor, the hub behaves as if a Flush had arrived from it").
func (h *Hub) dropSession(s *Session, _ error) {
	if h.isMaster(s) {
		h.resetAll(s)
	}
	s.close()
	h.peers.erase(s.Key)
	h.admission.forgetSession(s.Key)
	h.metrics.SessionDisconnected()
}

func (h *Hub) handleMessage(key SessionKey, msg wire.Message) {
	s, ok := h.peers.get(key)
	if !ok {
		return
	}
	s.LastMsg = time.Now()

	if !h.admission.AllowCommand(key) {
		h.log.Warnf("dropping message from %s: command rate limit exceeded", key)
		return
	}

	switch s.State {
	case StateAuthWait:
		h.handleAuthWait(s, msg)
	case StateReady:
		h.handleReady(s, msg)
	default:
		// DISC sessions should already be gone from the peer map.
	}
}

// handleAuthWait implements spec.md §4.2 step 2.
func (h *Hub) handleAuthWait(s *Session, msg wire.Message) {
	resp, ok := msg.(wire.AuthResponse)
	if !ok {
		h.dropSession(s, nettrxerr.New(nettrxerr.KindProtocolFormat, "handleAuthWait",
			fmt.Errorf("expected AuthResponse in AUTH_WAIT, got %T", msg)))
		return
	}
	if !auth.Verify([]byte(h.cfg.AuthKey), s.nonce, resp.Digest) {
		// Authentication failure closes the session silently from the
		// peer's perspective: no reason code on the wire (spec.md §7).
		h.log.Warnf("authentication failed for %s", s.Key)
		h.dropSession(s, nettrxerr.New(nettrxerr.KindAuthFailed, "handleAuthWait", nil))
		return
	}
	if err := s.send(wire.AuthOk{}); err != nil {
		h.dropSession(s, nettrxerr.New(nettrxerr.KindTransportIO, "handleAuthWait", err))
		return
	}
	// Clear any stale remote TX state.
	if err := s.send(wire.TransmitterStateChange{Transmitting: false}); err != nil {
		h.dropSession(s, nettrxerr.New(nettrxerr.KindTransportIO, "handleAuthWait", err))
		return
	}
	s.State = StateReady
	h.metrics.SessionReady()
}

// handleReady implements the spec.md §4.3 routing table.
func (h *Hub) handleReady(s *Session, msg wire.Message) {
	switch m := msg.(type) {
	case wire.Heartbeat:
		_ = s.send(wire.Heartbeat{})

	case wire.Audio:
		h.routeAudio(s, m)

	case wire.Flush:
		if h.isMaster(s) {
			h.resetAll(s)
		}
		// else: dropped.

	case wire.SetTxCtrlMode:
		switch m.Mode {
		case wire.TxCtrlOn:
			if s.Blocked {
				return
			}
			if h.setMaster(s) {
				h.broadcastExcept(s, wire.TransmitterStateChange{Transmitting: true})
				h.broadcastExcept(s, wire.Squelch{Open: true, Siglev: 1.0, RxID: 1})
				h.armAudioWatchdog(s)
			}
		case wire.TxCtrlAuto:
			if h.resetMaster(s) {
				h.broadcastExcept(s, wire.TransmitterStateChange{Transmitting: false})
				h.broadcastExcept(s, wire.SetTxCtrlMode{Mode: wire.TxCtrlAuto})
			}
		case wire.TxCtrlOff:
			// Not in the routing table; no-op like an unrecognized
			// control mode for the hub's purposes.
		}

	case wire.Reset:
		h.broadcastExcept(s, m)
	case wire.Squelch:
		h.broadcastExcept(s, m)
	case wire.SetMuteState:
		h.broadcastExcept(s, m)

	case wire.AddToneDetector, wire.SendDtmf, wire.EnableCtcss:
		// Meaningless at the hub; ignored.

	case wire.RxAudioCodecSelect:
		s.RxCodecName = m.Name
		s.RxCodecOptions = m.Options
	case wire.TxAudioCodecSelect:
		s.TxCodecName = m.Name
		s.TxCodecOptions = m.Options

	default:
		h.log.Warnf("dropping unknown/unexpected message %T from %s", msg, s.Key)
		h.metrics.MessageDropped()
	}
}

func (h *Hub) routeAudio(s *Session, m wire.Audio) {
	switch {
	case s.Blocked:
		// Barred from the floor by the squelch hold watchdog: drop.
		h.metrics.MessageDropped()
	case !h.hasMaster():
		h.setMaster(s)
		h.broadcastExcept(s, wire.Squelch{Open: true, Siglev: 1.0, RxID: 1})
		h.armAudioWatchdog(s)
		h.broadcastExcept(s, m)
	case h.isMaster(s):
		h.armAudioWatchdog(s)
		h.broadcastExcept(s, m)
	default:
		// Another peer holds the floor: drop.
		h.metrics.MessageDropped()
	}
}

// onAudioWatchdogFired recovers the floor after an abrupt loss of the
// master's audio stream (spec.md §4.3 "Audio watchdog").
func (h *Hub) onAudioWatchdogFired(s *Session) {
	h.log.Infof("audio watchdog fired for master %s", s.Key)
	h.resetAll(s)
}

// onSquelchWatchdogFired enforces the stuck-PTT protection (spec.md §4.3
// "Squelch hold watchdog"): the session is marked blocked and barred from
// becoming master again until reconnect.
func (h *Hub) onSquelchWatchdogFired(s *Session) {
	h.log.Warnf("squelch hold watchdog fired for master %s: blocking", s.Key)
	s.Blocked = true
	h.resetAll(s)
}

// resetAll is the single "release the floor" path shared by Flush,
// audio-watchdog expiry, squelch-watchdog expiry, and master disconnect:
// it broadcasts exactly Squelch{open=false} then AllSamplesFlushed, in
// that order, before any other hub-originated message, then clears
// master (spec.md §4.7).
func (h *Hub) resetAll(s *Session) {
	if !h.resetMaster(s) {
		return
	}
	h.broadcastExcept(s, wire.Squelch{Open: false})
	h.broadcastExcept(s, wire.AllSamplesFlushed{})
}

// broadcastExcept relays msg to every session other than s, iterating a
// snapshot so that a write failure triggering mid-broadcast disconnects
// doesn't corrupt the iteration (spec.md §4.3, §5).
func (h *Hub) broadcastExcept(s *Session, msg wire.Message) {
	for _, peer := range h.peers.Snapshot() {
		if peer == s || peer.State != StateReady {
			continue
		}
		if err := peer.send(msg); err != nil {
			h.log.Warnf("write to %s failed, disconnecting: %v", peer.Key, err)
			h.dropSession(peer, nettrxerr.New(nettrxerr.KindBufferOverflowSend, "broadcastExcept", err))
		}
	}
}

// handleHeartbeatSweep implements spec.md §4.3 "Heartbeat sweep": walk
// all sessions, disconnect anyone silent for more than 2x the heartbeat
// period, else send a Heartbeat.
func (h *Hub) handleHeartbeatSweep() {
	now := time.Now()
	limit := 2 * h.cfg.HeartbeatTimeout
	for _, s := range h.peers.Snapshot() {
		if s.State != StateReady {
			continue
		}
		if now.Sub(s.LastMsg) > limit {
			h.log.Infof("disconnecting %s: heartbeat timeout", s.Key)
			h.dropSession(s, nettrxerr.New(nettrxerr.KindPeerTimeout, "handleHeartbeatSweep", nil))
			continue
		}
		_ = s.send(wire.Heartbeat{})
	}
}

