package remote

import (
	"github.com/charmbracelet/log"

	"github.com/kb9vy/nettrxd/internal/audiocodec"
	"github.com/kb9vy/nettrxd/internal/wire"
)

// RxProxy is the client-side half of a linked repeater's receiver
// (component F): it maintains a reconnecting session to the hub and
// turns the wire messages spec.md §4.4 names into the high-level
// events a local audio/control layer cares about.
type RxProxy struct {
	log    *log.Logger
	client *Client
	codec  audiocodec.Codec

	CodecName    string
	CodecOptions []wire.CodecOption
	FreqHz       uint32
	Modulation   wire.Modulation
	MuteState    wire.MuteState

	siglev float32
	rxID   uint8
	open   bool

	decoderPending bool

	// Callbacks — a nil callback is simply not invoked.
	OnSquelchOpen func(open bool)
	OnSiglev      func(siglev float32, rxID uint8)
	OnDtmf        func(digit byte, durationMs int32)
	OnTone        func(freqHz float32)
	OnSel5        func(digits string)
	OnAudioPCM    func(pcm []int16)
}

// NewRxProxy builds an RxProxy over client, wiring client's callbacks to
// this proxy's message handling. client.Run must still be started by
// the caller.
func NewRxProxy(client *Client, logger *log.Logger) *RxProxy {
	p := &RxProxy{log: logger, client: client}
	client.AddMessageHandler(p.handle)
	client.AddReadyHandler(p.onReady)
	return p
}

// onReady re-sends the proxy's queued state once a (re-)connection
// reaches READY, per spec.md §4.4's "AuthOk path completion" rule.
func (p *RxProxy) onReady() {
	if p.CodecName != "" {
		p.client.Send(wire.RxAudioCodecSelect{Name: p.CodecName, Options: p.CodecOptions})
	}
	p.client.Send(wire.SetMuteState{State: p.MuteState})
	p.client.Send(wire.SetRxFq{Hz: p.FreqHz})
	p.client.Send(wire.SetRxModulation{Modulation: p.Modulation})
}

func (p *RxProxy) handle(msg wire.Message) {
	switch m := msg.(type) {
	case wire.Squelch:
		p.siglev = m.Siglev
		p.rxID = m.RxID
		wasOpen := p.open
		p.open = m.Open
		if m.Open && !wasOpen {
			p.raiseSquelch(true)
		} else if !m.Open && wasOpen {
			if p.decoderPending {
				// Deferred until the decoder flushes; see
				// AudioDecoderFlushed.
				return
			}
			p.raiseSquelch(false)
		}
	case wire.SiglevUpdate:
		p.siglev = m.Siglev
		p.rxID = m.RxID
		if p.OnSiglev != nil {
			p.OnSiglev(m.Siglev, m.RxID)
		}
	case wire.Dtmf:
		if p.MuteState == wire.MuteNone && p.OnDtmf != nil {
			p.OnDtmf(m.Digit, m.DurationMs)
		}
	case wire.Tone:
		if p.MuteState == wire.MuteNone && p.OnTone != nil {
			p.OnTone(m.FreqHz)
		}
	case wire.Sel5:
		if p.MuteState == wire.MuteNone && p.OnSel5 != nil {
			p.OnSel5(m.Digits)
		}
	case wire.Audio:
		if p.MuteState != wire.MuteNone || !p.open {
			return
		}
		p.decodeAndDeliver(m.Data)
	case wire.AllSamplesFlushed:
		p.AudioDecoderFlushed()
	}
}

func (p *RxProxy) raiseSquelch(open bool) {
	if p.OnSquelchOpen != nil {
		p.OnSquelchOpen(open)
	}
}

func (p *RxProxy) decodeAndDeliver(payload []byte) {
	if p.codec == nil || p.OnAudioPCM == nil {
		return
	}
	p.decoderPending = true
	pcm, err := p.codec.Decode(payload)
	if err != nil {
		p.log.Warnf("rxproxy: audio decode: %v", err)
		return
	}
	p.OnAudioPCM(pcm)
}

// AudioDecoderFlushed is called once the audio decoder has emitted
// every sample it owes for frames received before squelch closed
// (spec.md §4.4's allEncodedSamplesFlushed handling on the Rx side).
func (p *RxProxy) AudioDecoderFlushed() {
	if !p.decoderPending {
		return
	}
	p.decoderPending = false
	if !p.open {
		p.raiseSquelch(false)
	}
}

// SetCodec installs the decoder used for incoming Audio frames and
// queues it for (re-)announcement to the hub.
func (p *RxProxy) SetCodec(codec audiocodec.Codec, name string, opts []wire.CodecOption) {
	p.codec = codec
	p.CodecName = name
	p.CodecOptions = opts
}

// Siglev returns the most recently latched signal level and rx id.
func (p *RxProxy) Siglev() (float32, uint8) { return p.siglev, p.rxID }
