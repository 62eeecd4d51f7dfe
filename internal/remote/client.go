// Package remote implements the client half of the NetTrx session (the
// Remote Rx and Remote Tx proxies, components F and G): a reconnecting
// TCP session that speaks the same wire protocol and framing the hub
// speaks, plus the proxy-specific message handling spec.md §4.4
// describes.
package remote

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kb9vy/nettrxd/internal/auth"
	"github.com/kb9vy/nettrxd/internal/wire"
)

// ProtocolMajor/Minor are this client's protocol version; a ProtoVer whose
// major differs from ProtocolMajor aborts the connection attempt per
// spec.md §4.2 (the minor is not compared).
const (
	ProtocolMajor uint16 = 2
	ProtocolMinor uint16 = 7
)

const (
	heartbeatPeriod  = 10 * time.Second
	idleTimeout      = 15 * time.Second
	reconnectBackoff = 20 * time.Second
)

type clientState int

const (
	stateDisconnected clientState = iota
	stateVerWait
	stateAuthWait
	stateReady
)

// Client owns one reconnecting NetTrx session to a hub. It is the
// shared plumbing RxProxy and TxProxy build on: connect/reconnect loop,
// framing, auth handshake, heartbeat send/idle-timeout detection. App
// messages are delivered to OnMessage; OnReady fires once per
// successful (re-)connection, which is where a proxy (re-)sends its
// queued state.
type Client struct {
	log     *log.Logger
	host    string
	port    int
	authKey []byte

	// OnMessage/OnReady are convenience single-subscriber hooks; most
	// callers use AddMessageHandler/AddReadyHandler instead, since a
	// single session commonly carries both an RxProxy and a TxProxy
	// (spec.md §4.2: "at most one session per (host, port) pair").
	OnMessage func(wire.Message)
	OnReady   func()

	messageHandlers []func(wire.Message)
	readyHandlers   []func()

	loggedDisconnectOnce bool
	logDisconnectsOnce   bool

	conn  net.Conn
	state clientState
}

// New builds a Client targeting host:port. authKey may be empty when the
// hub has authentication disabled (the hub then sends AuthOk right after
// ProtoVer and no AuthChallenge arrives).
func New(host string, port int, authKey string, logDisconnectsOnce bool, logger *log.Logger) *Client {
	return &Client{
		log:                logger,
		host:               host,
		port:               port,
		authKey:            []byte(authKey),
		logDisconnectsOnce: logDisconnectsOnce,
	}
}

// Run drives the connect/reconnect loop until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := c.runOnce(ctx); err != nil {
			c.logDisconnect(err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectBackoff):
		}
	}
}

func (c *Client) logDisconnect(err error) {
	if c.logDisconnectsOnce && c.loggedDisconnectOnce {
		c.log.Debugf("remote session to %s:%d: %v", c.host, c.port, err)
		return
	}
	c.log.Warnf("remote session to %s:%d: %v", c.host, c.port, err)
	c.loggedDisconnectOnce = true
}

func (c *Client) runOnce(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	c.conn = conn
	c.state = stateVerWait

	errCh := make(chan error, 1)
	go c.readLoop(conn, errCh)

	heartbeat := time.NewTicker(heartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case <-heartbeat.C:
			if c.state == stateReady {
				if err := c.send(wire.Heartbeat{}); err != nil {
					return err
				}
			}
		}
	}
}

func (c *Client) readLoop(conn net.Conn, errCh chan<- error) {
	r := wire.NewReassembler(wire.MinReassemblyBuffer)
	buf := make([]byte, 4096)

	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		n, err := conn.Read(buf)
		if err != nil {
			errCh <- fmt.Errorf("read (idle %s): %w", idleTimeout, err)
			return
		}
		frames, err := r.Feed(buf[:n])
		if err != nil {
			errCh <- fmt.Errorf("reassembly: %w", err)
			return
		}
		for _, f := range frames {
			msg, err := wire.Decode(f.Type, f.Payload)
			if err != nil {
				errCh <- fmt.Errorf("decode: %w", err)
				return
			}
			if err := c.handle(msg); err != nil {
				errCh <- err
				return
			}
		}
	}
}

func (c *Client) handle(msg wire.Message) error {
	switch c.state {
	case stateVerWait:
		pv, ok := msg.(wire.ProtoVer)
		if !ok {
			return fmt.Errorf("expected ProtoVer, got %T", msg)
		}
		if pv.Major != ProtocolMajor {
			return fmt.Errorf("protocol major mismatch: peer %d, want %d", pv.Major, ProtocolMajor)
		}
		c.state = stateAuthWait
		return nil
	case stateAuthWait:
		switch m := msg.(type) {
		case wire.AuthChallenge:
			digest := auth.Respond(c.authKey, m.Nonce)
			return c.send(wire.AuthResponse{Digest: digest})
		case wire.AuthOk:
			c.state = stateReady
			c.dispatchReady()
			return nil
		default:
			return fmt.Errorf("unexpected message %T in AUTH_WAIT", msg)
		}
	case stateReady:
		if _, ok := msg.(wire.Heartbeat); ok {
			return c.send(wire.Heartbeat{})
		}
		c.dispatchMessage(msg)
		return nil
	}
	return nil
}

// Send writes msg to the session if currently connected and READY.
// Callers queue their own state when not connected; Client does not
// buffer outbound application messages across reconnects.
func (c *Client) Send(msg wire.Message) error {
	if c.state != stateReady {
		return fmt.Errorf("remote: not connected")
	}
	return c.send(msg)
}

func (c *Client) send(msg wire.Message) error {
	_, err := c.conn.Write(wire.Encode(msg))
	return err
}

// IsReady reports whether the session is currently authenticated and
// able to carry application traffic.
func (c *Client) IsReady() bool { return c.state == stateReady }

// AddMessageHandler registers an additional application-message
// subscriber. Multiple proxies (an RxProxy and a TxProxy) can share one
// Client this way.
func (c *Client) AddMessageHandler(f func(wire.Message)) {
	c.messageHandlers = append(c.messageHandlers, f)
}

// AddReadyHandler registers an additional subscriber fired each time the
// session reaches READY.
func (c *Client) AddReadyHandler(f func()) {
	c.readyHandlers = append(c.readyHandlers, f)
}

func (c *Client) dispatchMessage(msg wire.Message) {
	if c.OnMessage != nil {
		c.OnMessage(msg)
	}
	for _, f := range c.messageHandlers {
		f(msg)
	}
}

func (c *Client) dispatchReady() {
	if c.OnReady != nil {
		c.OnReady()
	}
	for _, f := range c.readyHandlers {
		f()
	}
}
