package ddr

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/kb9vy/nettrxd/internal/demod"
	"github.com/kb9vy/nettrxd/internal/logging"
	"github.com/kb9vy/nettrxd/internal/wire"
)

// Params is the reconfigurable channel parameter set: modulation, offset
// from the tuner center, and bandwidth class. Changing it takes the
// processing mutex so a sample block is never processed with mixed
// parameters (spec.md §4.5 "Threading").
type Params struct {
	ChannelFqHz       float64
	TunerCenterFqHz   float64
	ChannelOffsetHz   float64
	Modulation        wire.Modulation
	Class             BandwidthClass
}

// PreDemodSink receives the post-channelizer, pre-demodulator complex
// samples (spec.md §4.5 step 3 "Publish pre-demod"); signal-level
// detectors and deviation tools subscribe through this.
type PreDemodSink func(iq []complex128)

// PCMSink receives demodulated PCM ready for internal/localrx.
type PCMSink func(pcm []float64)

// DDR is one Digital Drop Receiver: a dedicated worker that translates,
// channelizes, and demodulates samples handed to it by a tuner (spec.md
// §4.5 "Threading"). The tuner's goroutine calls Feed; a private worker
// goroutine does all the DSP work so the tuner's read loop is never
// blocked by it.
type DDR struct {
	tunerRateHz int

	mu       sync.Mutex // guards the input queue only
	cond     *sync.Cond
	queue    [][]complex128
	queuedN  int
	maxQueue int
	closed   bool
	done     chan struct{}

	procMu sync.Mutex // guards params + stage state during reconfiguration
	params Params
	mixer  *Mixer
	cascade *Cascade
	demod  demod.Demodulator

	preDemod PreDemodSink
	pcmOut   PCMSink

	disabled bool
	log      *log.Logger
}

// New builds a DDR for a tuner running at tunerRateHz, with the given
// initial parameters. maxQueueSamples bounds the input backlog (spec.md
// §4.5 "bounded buffer"); Feed drops samples once it's full rather than
// growing unboundedly.
func New(tunerRateHz int, params Params, maxQueueSamples int, preDemod PreDemodSink, pcmOut PCMSink) (*DDR, error) {
	d := &DDR{
		tunerRateHz: tunerRateHz,
		maxQueue:    maxQueueSamples,
		preDemod:    preDemod,
		pcmOut:      pcmOut,
		log:         logging.For("ddr"),
		done:        make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	if err := d.Reconfigure(params); err != nil {
		return nil, err
	}
	return d, nil
}

// Reconfigure rebuilds the mixer/cascade/demodulator under the processing
// mutex (spec.md §4.5 "Reconfiguration ... takes the processing mutex so
// that sample blocks are never partially processed with mixed parameters").
func (d *DDR) Reconfigure(p Params) error {
	delta := p.ChannelFqHz - p.TunerCenterFqHz - p.ChannelOffsetHz
	cascade, err := NewChannelCascade(d.tunerRateHz, p.Class)
	if err != nil {
		return err
	}
	outRate := OutputRateHz(p.Class, d.tunerRateHz)

	d.procMu.Lock()
	d.params = p
	d.mixer = NewMixer(delta, d.tunerRateHz)
	d.cascade = cascade
	d.demod = demod.New(p.Modulation, float64(outRate))
	d.disabled = false
	d.procMu.Unlock()
	return nil
}

// Disable marks this DDR as not fitting the tuner's current span (spec.md
// §4.5 "DDRs that do not fit print a warning and are disabled"). It stays
// registered so a later Reconfigure (after re-tuning) can revive it.
func (d *DDR) Disable() {
	d.procMu.Lock()
	d.disabled = true
	d.procMu.Unlock()
	d.log.Warn("DDR disabled: channel no longer fits tuner span", "freq_hz", d.params.ChannelFqHz)
}

// Feed is called from the tuner's own goroutine with a new block of
// wideband IQ samples. It copies the block into the bounded queue and
// signals the worker; full queues drop the incoming block.
func (d *DDR) Feed(samples []complex128) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.queuedN+len(samples) > d.maxQueue {
		d.mu.Unlock()
		return
	}
	cp := make([]complex128, len(samples))
	copy(cp, samples)
	d.queue = append(d.queue, cp)
	d.queuedN += len(samples)
	d.mu.Unlock()
	d.cond.Signal()
}

// Run drives the worker loop until Close is called; intended to run in its
// own goroutine, one per DDR. Close blocks until Run has returned, so
// callers must always start Run before calling Close.
func (d *DDR) Run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if d.closed && len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		block := d.queue[0]
		d.queue = d.queue[1:]
		d.queuedN -= len(block)
		d.mu.Unlock()

		d.processBlock(block)
	}
}

func (d *DDR) processBlock(block []complex128) {
	d.procMu.Lock()
	defer d.procMu.Unlock()
	if d.disabled {
		return
	}

	mixed := d.mixer.ProcessBlock(block)
	channelized := d.cascade.Process(mixed)

	if d.preDemod != nil && len(channelized) > 0 {
		d.preDemod(channelized)
	}
	if len(channelized) == 0 {
		return
	}
	pcm := d.demod.ProcessBlock(channelized)
	if d.pcmOut != nil {
		d.pcmOut(pcm)
	}
}

// Close stops the worker goroutine after it drains any queued samples,
// and does not return until that goroutine has actually exited (spec.md
// §5 "A DDR's disable() must join its worker before releasing
// resources") — the caller can safely release the tuner/audio resources
// it shares with the worker immediately after Close returns.
func (d *DDR) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cond.Broadcast()
	<-d.done
}
