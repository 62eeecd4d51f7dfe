package remote

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/kb9vy/nettrxd/internal/wire"
)

func testClient() *Client {
	return New("localhost", 0, "", false, log.Default())
}

func TestRxProxyLatchesSquelchOnOpen(t *testing.T) {
	c := testClient()
	p := NewRxProxy(c, log.Default())
	c.state = stateReady

	var gotOpen *bool
	p.OnSquelchOpen = func(open bool) { gotOpen = &open }

	p.handle(wire.Squelch{Open: true, Siglev: 0.8, RxID: 1})
	require.NotNil(t, gotOpen)
	require.True(t, *gotOpen)
	siglev, rxID := p.Siglev()
	require.Equal(t, float32(0.8), siglev)
	require.Equal(t, uint8(1), rxID)
}

func TestRxProxyDefersSquelchCloseUntilDecoderFlushed(t *testing.T) {
	c := testClient()
	p := NewRxProxy(c, log.Default())
	c.state = stateReady

	var events []bool
	p.OnSquelchOpen = func(open bool) { events = append(events, open) }

	p.handle(wire.Squelch{Open: true})
	p.decoderPending = true
	p.handle(wire.Squelch{Open: false})
	require.Equal(t, []bool{true}, events, "close must be deferred while decoder has pending samples")

	p.AudioDecoderFlushed()
	require.Equal(t, []bool{true, false}, events)
}

func TestRxProxyDropsDtmfWhenMuted(t *testing.T) {
	c := testClient()
	p := NewRxProxy(c, log.Default())
	p.MuteState = wire.MuteAll

	called := false
	p.OnDtmf = func(byte, int32) { called = true }
	p.handle(wire.Dtmf{Digit: '5', DurationMs: 100})
	require.False(t, called)
}

func TestTxProxyAssertsTransmittingWithoutConnection(t *testing.T) {
	c := testClient()
	p := NewTxProxy(c, log.Default())
	require.False(t, p.IsTransmitting())
	p.FeedAudio([]int16{1, 2, 3})
	require.True(t, p.IsTransmitting())
}

func TestTxProxyClearsTransmittingOnFlushedWhenDisconnectedAuto(t *testing.T) {
	c := testClient()
	p := NewTxProxy(c, log.Default())
	p.SetCtrlMode(wire.TxCtrlAuto)
	p.FeedAudio([]int16{1})
	p.Idle()
	require.True(t, p.pendingFlush)

	var gotState *bool
	p.OnTransmitterStateChange = func(t bool) { gotState = &t }
	p.onFlushed()
	require.NotNil(t, gotState)
	require.False(t, *gotState)
	require.False(t, p.IsTransmitting())
}
