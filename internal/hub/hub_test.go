package hub

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kb9vy/nettrxd/internal/config"
	"github.com/kb9vy/nettrxd/internal/wire"
)

func startTestHub(t *testing.T, mutate func(*config.HubConfig)) (addr string, shutdown func()) {
	t.Helper()
	cfg := &config.HubConfig{
		ListenPort:       0,
		SquelchTimeout:   time.Second,
		SquelchResetTO:   time.Second,
		HeartbeatTimeout: config.MinHeartbeatTimeout,
		ReassemblyBytes:  config.DefaultReassemblyBytes,
	}
	if mutate != nil {
		mutate(cfg)
	}
	h := New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Run(ctx)
		close(done)
	}()
	a := h.Addr()
	return a.String(), func() {
		cancel()
		<-done
	}
}

// testClient wraps a raw TCP connection with a Reassembler so tests can
// read whole NetTrx messages the way a real remote proxy would.
type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *wire.Reassembler
}

func dialTestClient(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	return &testClient{t: t, conn: conn, r: wire.NewReassembler(config.DefaultReassemblyBytes)}
}

func (c *testClient) send(msg wire.Message) {
	_, err := c.conn.Write(wire.Encode(msg))
	require.NoError(c.t, err)
}

func (c *testClient) recv() wire.Message {
	c.t.Helper()
	buf := make([]byte, 4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		n, err := c.conn.Read(buf)
		require.NoError(c.t, err)
		frames, err := c.r.Feed(buf[:n])
		require.NoError(c.t, err)
		if len(frames) > 0 {
			msg, err := wire.Decode(frames[0].Type, frames[0].Payload)
			require.NoError(c.t, err)
			return msg
		}
	}
}

// handshakeNoAuth mirrors what the real remote.Client actually does on
// connect: read and locally validate ProtoVer, then treat AuthOk as
// immediate admission to READY. It never echoes ProtoVer back — the hub
// must not wait for that.
func (c *testClient) handshakeNoAuth() {
	c.t.Helper()
	pv := c.recv()
	_, ok := pv.(wire.ProtoVer)
	require.True(c.t, ok, "expected ProtoVer, got %T", pv)
	ok2 := c.recv()
	_, isAuthOk := ok2.(wire.AuthOk)
	require.True(c.t, isAuthOk, "expected AuthOk, got %T", ok2)
}

func TestHandshakeNoAuthReachesReady(t *testing.T) {
	addr, shutdown := startTestHub(t, nil)
	defer shutdown()

	c := dialTestClient(t, addr)
	defer c.conn.Close()
	c.handshakeNoAuth()

	c.send(wire.Heartbeat{})
	reply := c.recv()
	_, ok := reply.(wire.Heartbeat)
	require.True(t, ok, "expected Heartbeat echo, got %T", reply)
}

func TestAudioGrantsFloorAndBroadcasts(t *testing.T) {
	addr, shutdown := startTestHub(t, nil)
	defer shutdown()

	a := dialTestClient(t, addr)
	defer a.conn.Close()
	a.handshakeNoAuth()

	b := dialTestClient(t, addr)
	defer b.conn.Close()
	b.handshakeNoAuth()

	a.send(wire.Audio{Data: []byte{1, 2, 3, 4}})

	sq, ok := b.recv().(wire.Squelch)
	require.True(t, ok)
	require.True(t, sq.Open)

	audio, ok := b.recv().(wire.Audio)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, audio.Data)

	// A's Flush releases the floor: B sees Squelch{open=false} then
	// AllSamplesFlushed.
	a.send(wire.Flush{})
	closedSq, ok := b.recv().(wire.Squelch)
	require.True(t, ok)
	require.False(t, closedSq.Open)
	flushed, ok := b.recv().(wire.AllSamplesFlushed)
	require.True(t, ok)
	_ = flushed
}

func TestSecondMasterAudioIsDropped(t *testing.T) {
	addr, shutdown := startTestHub(t, nil)
	defer shutdown()

	a := dialTestClient(t, addr)
	defer a.conn.Close()
	a.handshakeNoAuth()

	b := dialTestClient(t, addr)
	defer b.conn.Close()
	b.handshakeNoAuth()

	c := dialTestClient(t, addr)
	defer c.conn.Close()
	c.handshakeNoAuth()

	a.send(wire.Audio{Data: []byte{9}})
	_, ok := b.recv().(wire.Squelch) // a becomes master
	require.True(t, ok)
	_, ok = b.recv().(wire.Audio)
	require.True(t, ok)

	// c's audio should be dropped since a holds the floor; confirm by
	// having a flush and checking b never saw c's bytes in between.
	c.send(wire.Audio{Data: []byte{99}})
	a.send(wire.Flush{})

	closedSq, ok := b.recv().(wire.Squelch)
	require.True(t, ok)
	require.False(t, closedSq.Open)
}

func TestSetTxCtrlModeOnGrantsFloorToAuto(t *testing.T) {
	addr, shutdown := startTestHub(t, nil)
	defer shutdown()

	a := dialTestClient(t, addr)
	defer a.conn.Close()
	a.handshakeNoAuth()

	b := dialTestClient(t, addr)
	defer b.conn.Close()
	b.handshakeNoAuth()

	a.send(wire.SetTxCtrlMode{Mode: wire.TxCtrlOn})
	tsc, ok := b.recv().(wire.TransmitterStateChange)
	require.True(t, ok)
	require.True(t, tsc.Transmitting)

	sq, ok := b.recv().(wire.Squelch)
	require.True(t, ok)
	require.True(t, sq.Open)

	a.send(wire.SetTxCtrlMode{Mode: wire.TxCtrlAuto})
	tsc2, ok := b.recv().(wire.TransmitterStateChange)
	require.True(t, ok)
	require.False(t, tsc2.Transmitting)

	mode, ok := b.recv().(wire.SetTxCtrlMode)
	require.True(t, ok)
	require.Equal(t, wire.TxCtrlAuto, mode.Mode)
}

func TestAuthChallengeRequiresCorrectResponse(t *testing.T) {
	addr, shutdown := startTestHub(t, func(c *config.HubConfig) { c.AuthKey = "s3cret" })
	defer shutdown()

	c := dialTestClient(t, addr)
	defer c.conn.Close()

	pv := c.recv()
	_, ok := pv.(wire.ProtoVer)
	require.True(t, ok)

	challenge, ok := c.recv().(wire.AuthChallenge)
	require.True(t, ok)
	_ = challenge

	// Wrong digest: connection should be closed without an AuthOk.
	c.send(wire.AuthResponse{Digest: [20]byte{1, 2, 3}})
	_ = c.conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 8)
	_, err := c.conn.Read(buf)
	require.Error(t, err)
}
