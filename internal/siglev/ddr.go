package siglev

// DDR measures signal level directly from the pre-demodulator IQ power a
// DDR channelizer publishes (spec.md §4.5 step 3), rather than from
// demodulated audio — the most accurate measurement since it isn't
// affected by squelch/AGC acting on the audio path (spec.md's "ddr"
// plug-in, grounded on SigLevDetDdr.cpp).
type DDR struct {
	logMap
	hist *powerHistory
}

func NewDDR(integrationBlocks int) *DDR {
	return &DDR{logMap: defaultLogMap(), hist: newPowerHistory(integrationBlocks)}
}

// ProcessIQPower is fed directly from a DDR's PreDemodSink, bypassing the
// PCM-oriented Detector.ProcessSamples path the other plug-ins use.
func (d *DDR) ProcessIQPower(iq []complex128) {
	if len(iq) == 0 {
		return
	}
	var sum float64
	for _, s := range iq {
		sum += real(s)*real(s) + imag(s)*imag(s)
	}
	d.hist.push(sum / float64(len(iq)))
}

// ProcessSamples satisfies Detector for callers that don't distinguish
// IQ-fed detectors from PCM-fed ones; it is a no-op since DDR measures
// pre-demod power via ProcessIQPower instead.
func (d *DDR) ProcessSamples(pcm []float64) {}

func (d *DDR) LastSiglev() float32 {
	p, ok := d.hist.last()
	if !ok {
		return 0
	}
	return d.apply(p)
}

func (d *DDR) Integrated() float32 {
	p, ok := d.hist.min()
	if !ok {
		return 0
	}
	return d.apply(p)
}

func (d *DDR) Reset() { d.hist.reset() }
