// Package siglev implements the signal-level detector plug-ins (spec.md
// component L), grounded on svxlink's trx/SigLevDet* family: a shared
// Detector interface with Noise/Tone/DDR/AFSK/Sim/Const/None
// implementations, each mapping some measured quantity to an
// approximately-0..100 signal level via an offset/slope log mapping
// (original_source/src/svxlink/trx/SigLevDetNoise.cpp).
package siglev

import "math"

// Detector is the common contract every plug-in satisfies. ProcessSamples
// feeds demodulated PCM (or, for DDR, is driven separately via
// ProcessIQPower); LastSiglev/Integrated report the 0..100-ish scale
// original_source's SigLevDet.h documents.
type Detector interface {
	ProcessSamples(pcm []float64)
	LastSiglev() float32
	Integrated() float32
	Reset()
}

// logMap implements the shared offset/slope/bogus-threshold mapping every
// power-based detector in the family uses: siglev = offset - slope*log10(p).
type logMap struct {
	Offset      float64
	Slope       float64
	BogusThresh float64
}

func defaultLogMap() logMap {
	return logMap{Offset: 120, Slope: 10, BogusThresh: math.MaxFloat32}
}

func (m logMap) apply(power float64) float32 {
	if power <= 0 {
		return 0
	}
	v := m.Offset - m.Slope*math.Log10(power)
	if v > m.BogusThresh {
		return 0
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return float32(v)
}

// powerHistory keeps a short ring of recent block powers so Integrated()
// can report a "compensated minimum over the integration window" the way
// SigLevDetNoise.cpp does, rather than an instantaneous reading.
type powerHistory struct {
	samples []float64
	cap     int
}

func newPowerHistory(cap int) *powerHistory {
	if cap < 1 {
		cap = 1
	}
	return &powerHistory{cap: cap}
}

func (h *powerHistory) push(p float64) {
	h.samples = append(h.samples, p)
	if len(h.samples) > h.cap {
		h.samples = h.samples[len(h.samples)-h.cap:]
	}
}

func (h *powerHistory) min() (float64, bool) {
	if len(h.samples) == 0 {
		return 0, false
	}
	m := h.samples[0]
	for _, v := range h.samples[1:] {
		if v < m {
			m = v
		}
	}
	return m, true
}

func (h *powerHistory) last() (float64, bool) {
	if len(h.samples) == 0 {
		return 0, false
	}
	return h.samples[len(h.samples)-1], true
}

func (h *powerHistory) reset() { h.samples = h.samples[:0] }

func blockPower(pcm []float64) float64 {
	if len(pcm) == 0 {
		return 0
	}
	var sum float64
	for _, s := range pcm {
		sum += s * s
	}
	return sum / float64(len(pcm))
}
