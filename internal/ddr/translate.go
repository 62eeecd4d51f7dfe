package ddr

import "math"

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Mixer multiplies an IQ stream by exp(-j*2*pi*deltaHz*n/fs), precomputed
// into a LUT of length fs/gcd(fs,|deltaHz|) that repeats exactly (spec.md
// §4.5 step 1).
type Mixer struct {
	lut []complex128
	idx int
}

// NewMixer builds the mixer for the given frequency offset at sampleRateHz.
// A deltaHz of 0 is legal and produces a single-entry identity LUT.
func NewMixer(deltaHz float64, sampleRateHz int) *Mixer {
	d := int(math.Round(deltaHz))
	if d == 0 {
		return &Mixer{lut: []complex128{1}}
	}
	g := gcd(sampleRateHz, intAbs(d))
	if g == 0 {
		g = 1
	}
	period := sampleRateHz / g
	lut := make([]complex128, period)
	for n := 0; n < period; n++ {
		theta := -2 * math.Pi * deltaHz * float64(n) / float64(sampleRateHz)
		lut[n] = complex(math.Cos(theta), math.Sin(theta))
	}
	return &Mixer{lut: lut}
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Process mixes one sample and advances the cyclic LUT index.
func (m *Mixer) Process(s complex128) complex128 {
	out := s * m.lut[m.idx]
	m.idx++
	if m.idx == len(m.lut) {
		m.idx = 0
	}
	return out
}

// ProcessBlock mixes an entire block in place semantics (returns a new slice).
func (m *Mixer) ProcessBlock(in []complex128) []complex128 {
	out := make([]complex128, len(in))
	for i, s := range in {
		out[i] = m.Process(s)
	}
	return out
}

// SidebandOffsetHz is the channel-offset spec.md §4.5 step 1 applies so the
// desired sideband sits at baseband: LSB +2000Hz, USB -2000Hz, others 0.
func SidebandOffsetHz(usb, lsb bool) float64 {
	switch {
	case lsb:
		return 2000
	case usb:
		return -2000
	default:
		return 0
	}
}
