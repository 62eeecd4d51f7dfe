package remote

import (
	"github.com/charmbracelet/log"

	"github.com/kb9vy/nettrxd/internal/audiocodec"
	"github.com/kb9vy/nettrxd/internal/wire"
)

// TxProxy is the client-side half of a linked repeater's transmitter
// (component G): it owns a paced audio encoder and tracks a local
// isTransmitting flag independent of the wire connection, so a TX_AUTO
// transmitter that loses its hub link mid-transmission still behaves
// sanely until the link comes back (spec.md §4.4).
type TxProxy struct {
	log    *log.Logger
	client *Client
	codec  audiocodec.Codec

	CodecName    string
	CodecOptions []wire.CodecOption
	FreqHz       uint32
	Modulation   wire.Modulation

	ctrlMode wire.TxCtrlMode

	isTransmitting bool
	pendingFlush   bool

	// OnTransmitterStateChange fires when isTransmitting clears after a
	// confirmed flush.
	OnTransmitterStateChange func(transmitting bool)
}

// NewTxProxy builds a TxProxy over client.
func NewTxProxy(client *Client, logger *log.Logger) *TxProxy {
	p := &TxProxy{log: logger, client: client, ctrlMode: wire.TxCtrlAuto}
	client.AddMessageHandler(p.handle)
	client.AddReadyHandler(p.onReady)
	return p
}

// onReady re-announces the proxy's queued transmit state on every
// (re-)connection, mirroring RxProxy's AuthOk completion handling.
func (p *TxProxy) onReady() {
	if p.CodecName != "" {
		p.client.Send(wire.TxAudioCodecSelect{Name: p.CodecName, Options: p.CodecOptions})
	}
	p.client.Send(wire.SetTxFq{Hz: p.FreqHz})
	p.client.Send(wire.SetTxModulation{Modulation: p.Modulation})
	p.client.Send(wire.SetTxCtrlMode{Mode: p.ctrlMode})
}

// SetCodec installs the encoder used for outbound PCM and queues its
// name/options for (re-)announcement to the hub.
func (p *TxProxy) SetCodec(codec audiocodec.Codec, name string, opts []wire.CodecOption) {
	p.codec = codec
	p.CodecName = name
	p.CodecOptions = opts
}

func (p *TxProxy) handle(msg wire.Message) {
	switch msg.(type) {
	case wire.AllSamplesFlushed:
		p.onFlushed()
	}
}

// FeedAudio pushes one block of local PCM audio toward the hub. While
// disconnected and in TX_AUTO mode, the encoder is skipped but the
// proxy still asserts isTransmitting locally so downstream state (e.g.
// a PTT indicator) reflects reality even without a wire confirmation.
func (p *TxProxy) FeedAudio(pcm []int16) {
	p.isTransmitting = true

	if !p.client.IsReady() || p.codec == nil {
		return
	}

	payload, err := p.codec.Encode(pcm)
	if err != nil {
		p.log.Warnf("txproxy: audio encode: %v", err)
		return
	}
	if err := p.client.Send(wire.Audio{Data: payload}); err != nil {
		p.log.Warnf("txproxy: send audio: %v", err)
	}
}

// Idle signals that the local audio stream has gone quiet: it marks a
// flush as pending and sends Flush if the session is READY (a pending
// flush is not re-sent on a later reconnect), clearing isTransmitting
// only after allEncodedSamplesFlushed confirms the encoder has nothing
// left in flight.
func (p *TxProxy) Idle() {
	if !p.isTransmitting {
		return
	}
	p.pendingFlush = true
	if p.client.IsReady() {
		if err := p.client.Send(wire.Flush{}); err != nil {
			p.log.Warnf("txproxy: send flush: %v", err)
		}
	}
}

func (p *TxProxy) onFlushed() {
	if !p.pendingFlush {
		return
	}
	p.pendingFlush = false
	if !p.client.IsReady() || p.ctrlMode == wire.TxCtrlAuto {
		p.isTransmitting = false
		if p.OnTransmitterStateChange != nil {
			p.OnTransmitterStateChange(false)
		}
	}
}

// SetCtrlMode updates the locally-tracked TX control mode; it does not
// itself send SetTxCtrlMode — the hub is the authority on mode changes
// via its own broadcast.
func (p *TxProxy) SetCtrlMode(mode wire.TxCtrlMode) { p.ctrlMode = mode }

// IsTransmitting reports the locally-tracked PTT state.
func (p *TxProxy) IsTransmitting() bool { return p.isTransmitting }
