package siglev

// Noise estimates signal level from out-of-band noise power: the wider
// the receiver's noise floor opens up, the weaker the signal (spec.md's
// "noise" plug-in, grounded on SigLevDetNoise.cpp's log-mapped,
// integration-windowed noise power measurement).
type Noise struct {
	logMap
	hist *powerHistory
}

// NewNoise builds a Noise detector. integrationBlocks is how many recent
// blocks Integrated() takes the minimum power over, mirroring
// SigLevDetNoise's integration-time window.
func NewNoise(integrationBlocks int) *Noise {
	return &Noise{logMap: defaultLogMap(), hist: newPowerHistory(integrationBlocks)}
}

func (n *Noise) ProcessSamples(pcm []float64) {
	n.hist.push(blockPower(pcm))
}

func (n *Noise) LastSiglev() float32 {
	p, ok := n.hist.last()
	if !ok {
		return 0
	}
	return n.apply(p)
}

func (n *Noise) Integrated() float32 {
	p, ok := n.hist.min()
	if !ok {
		return 0
	}
	return n.apply(p)
}

func (n *Noise) Reset() { n.hist.reset() }
