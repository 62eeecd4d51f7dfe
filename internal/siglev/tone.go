package siglev

import "math"

// Tone estimates signal level from the power of a single audio tone
// (e.g. a CTCSS or a repeater-injected pilot tone), via a Goertzel filter
// rather than a full FFT (spec.md's "tone" plug-in, grounded on
// SigLevDetTone.cpp's single-bin power measurement).
type Tone struct {
	logMap
	sampleRateHz float64
	toneHz       float64
	blockLen     int
	hist         *powerHistory
}

// NewTone builds a Tone detector for toneHz at sampleRateHz, measuring
// power over blockLen-sample windows.
func NewTone(sampleRateHz, toneHz float64, blockLen, integrationBlocks int) *Tone {
	return &Tone{
		// Negative slope: more tone power maps to a higher siglev.
		logMap:       logMap{Offset: 120, Slope: -10, BogusThresh: math.MaxFloat32},
		sampleRateHz: sampleRateHz,
		toneHz:       toneHz,
		blockLen:     blockLen,
		hist:         newPowerHistory(integrationBlocks),
	}
}

// goertzelPower returns the power of toneHz within pcm via a Goertzel
// single-bin DFT (cheaper than a full FFT for one frequency of interest).
func (t *Tone) goertzelPower(pcm []float64) float64 {
	if len(pcm) == 0 {
		return 0
	}
	k := int(0.5 + float64(len(pcm))*t.toneHz/t.sampleRateHz)
	w := 2 * math.Pi * float64(k) / float64(len(pcm))
	cw := math.Cos(w)
	coeff := 2 * cw
	var s0, s1, s2 float64
	for _, x := range pcm {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	return power / float64(len(pcm)*len(pcm))
}

func (t *Tone) ProcessSamples(pcm []float64) {
	for len(pcm) > 0 {
		n := t.blockLen
		if n > len(pcm) || n <= 0 {
			n = len(pcm)
		}
		t.hist.push(t.goertzelPower(pcm[:n]))
		pcm = pcm[n:]
	}
}

func (t *Tone) LastSiglev() float32 {
	p, ok := t.hist.last()
	if !ok {
		return 0
	}
	return t.apply(p)
}

func (t *Tone) Integrated() float32 {
	var sum float64
	n := 0
	for _, p := range t.hist.samples {
		sum += p
		n++
	}
	if n == 0 {
		return 0
	}
	return t.apply(sum / float64(n))
}

func (t *Tone) Reset() { t.hist.reset() }
