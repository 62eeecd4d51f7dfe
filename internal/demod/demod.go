// Package demod implements the FM/AM/SSB/CW demodulators a DDR pipeline
// runs after channelizing (spec.md §4.6), grounded on the teacher's
// audio_extensions biquad/discriminator style: small stateful structs
// operating sample-by-sample on plain float64/complex128, no external DSP
// dependency for the core math.
package demod

import (
	"math"

	"github.com/kb9vy/nettrxd/internal/wire"
)

// MaxDeviationHz returns the FM deviation spec.md §4.6 assigns to mod.
func MaxDeviationHz(mod wire.Modulation) float64 {
	switch mod {
	case wire.ModFM:
		return 5000
	case wire.ModNBFM:
		return 2500
	case wire.ModWBFM:
		return 75000
	default:
		return 5000
	}
}

// HeadroomDB is the default FM post-discriminator headroom (spec.md §4.6).
const HeadroomDB = 6.0

// FM is a stateful FM/NBFM/WBFM discriminator.
//
// Discriminator: d = atan2(Q·Ip - I·Qp, I·Ip + Q·Qp), output fs*d/(2*pi),
// scaled so a deviation of MaxDeviationHz maps to peak amplitude
// 1/headroom.
type FM struct {
	SampleRateHz float64
	MaxDevHz     float64
	HeadroomDB   float64

	prevI, prevQ float64
	have         bool
}

// NewFM builds an FM discriminator for the given input sample rate and
// modulation variant.
func NewFM(sampleRateHz float64, mod wire.Modulation) *FM {
	return &FM{
		SampleRateHz: sampleRateHz,
		MaxDevHz:     MaxDeviationHz(mod),
		HeadroomDB:   HeadroomDB,
	}
}

func (f *FM) scale() float64 {
	headroomLinear := math.Pow(10, -f.HeadroomDB/20)
	return headroomLinear / f.MaxDevHz
}

// Process discriminates one IQ sample into a PCM sample in [-1, 1].
func (f *FM) Process(i, q float64) float64 {
	if !f.have {
		f.prevI, f.prevQ = i, q
		f.have = true
		return 0
	}
	d := math.Atan2(q*f.prevI-i*f.prevQ, i*f.prevI+q*f.prevQ)
	f.prevI, f.prevQ = i, q
	hz := f.SampleRateHz * d / (2 * math.Pi)
	out := hz * f.scale()
	if out > 1 {
		out = 1
	} else if out < -1 {
		out = -1
	}
	return out
}

// ProcessBlock discriminates an entire complex128 block, returning a new
// same-length real PCM slice.
func (f *FM) ProcessBlock(iq []complex128) []float64 {
	out := make([]float64, len(iq))
	for n, s := range iq {
		out[n] = f.Process(real(s), imag(s))
	}
	return out
}

// AGC implements the shared attack/decay/reference/max-gain contract from
// spec.md §4.6: per sample, P = |g*s|^2, e = reference - P, and
// g += e*decay if e>0 else e*attack, clamped to [0, maxGain].
type AGC struct {
	Attack    float64
	Decay     float64
	Reference float64
	MaxGain   float64

	gain float64
}

// NewAGC builds an AGC with the given contract parameters and an initial
// unity gain.
func NewAGC(attack, decay, reference, maxGain float64) *AGC {
	return &AGC{Attack: attack, Decay: decay, Reference: reference, MaxGain: maxGain, gain: 1.0}
}

// Apply scales s by the current gain and updates the gain from the
// resulting output power.
func (a *AGC) Apply(s complex128) complex128 {
	out := complex(real(s)*a.gain, imag(s)*a.gain)
	p := real(out)*real(out) + imag(out)*imag(out)
	e := a.Reference - p
	if e > 0 {
		a.gain += e * a.Decay
	} else {
		a.gain += e * a.Attack
	}
	if a.gain < 0 {
		a.gain = 0
	} else if a.gain > a.MaxGain {
		a.gain = a.MaxGain
	}
	return out
}

// Gain returns the current AGC gain, mainly for tests/telemetry.
func (a *AGC) Gain() float64 { return a.gain }

// defaultAMAGC/defaultSSBAGC/defaultCWAGC are the parameter sets spec.md
// §4.6 assigns to each envelope-style demodulator.
func defaultAMAGC() *AGC  { return NewAGC(1.0, 0.01, 1.0, 200) }
func defaultSSBAGC() *AGC { return NewAGC(10, 0.01, 0.25, 200) }
func defaultCWAGC() *AGC  { return NewAGC(100, 0.04, 0.05, 200) }

// AM demodulates AM/NBAM: AGC then magnitude.
type AM struct{ agc *AGC }

func NewAM() *AM { return &AM{agc: defaultAMAGC()} }

func (m *AM) Process(s complex128) float64 {
	g := m.agc.Apply(s)
	return math.Hypot(real(g), imag(g))
}

// mixer is a complex-exponential oscillator used to translate SSB/CW to
// baseband, mirroring the DDR channelizer's translate stage (spec.md
// §4.5) but at audio rate and with a fixed small offset.
type mixer struct {
	phaseInc float64
	phase    float64
}

func newMixer(offsetHz, sampleRateHz float64) *mixer {
	return &mixer{phaseInc: 2 * math.Pi * offsetHz / sampleRateHz}
}

func (m *mixer) next() complex128 {
	c := complex(math.Cos(m.phase), math.Sin(m.phase))
	m.phase += m.phaseInc
	if m.phase > 2*math.Pi {
		m.phase -= 2 * math.Pi
	} else if m.phase < -2*math.Pi {
		m.phase += 2 * math.Pi
	}
	return c
}

// SSB demodulates USB/LSB: translate by ±2kHz to bring the sideband to
// baseband, AGC, take the real part.
type SSB struct {
	mix *mixer
	agc *AGC
}

// NewSSB builds an SSB demodulator. usb selects the +2kHz (USB) vs
// -2kHz (LSB) translation, which undoes the opposite-signed channel
// offset ddr.SidebandOffsetHz applies (USB -2kHz, LSB +2kHz).
func NewSSB(sampleRateHz float64, usb bool) *SSB {
	offset := -2000.0
	if usb {
		offset = 2000.0
	}
	return &SSB{mix: newMixer(offset, sampleRateHz), agc: defaultSSBAGC()}
}

func (s *SSB) Process(sample complex128) float64 {
	translated := sample * s.mix.next()
	g := s.agc.Apply(translated)
	return real(g)
}

// CW demodulates CW: translate by +600Hz to the beat note, AGC, real part.
type CW struct {
	mix *mixer
	agc *AGC
}

func NewCW(sampleRateHz float64) *CW {
	return &CW{mix: newMixer(600, sampleRateHz), agc: defaultCWAGC()}
}

func (c *CW) Process(sample complex128) float64 {
	translated := sample * c.mix.next()
	g := c.agc.Apply(translated)
	return real(g)
}

// Demodulator is the common interface the DDR worker drives once a block
// of post-channelizer IQ samples is ready.
type Demodulator interface {
	ProcessBlock(iq []complex128) []float64
}

type blockAdapter struct {
	step func(complex128) float64
}

func (b blockAdapter) ProcessBlock(iq []complex128) []float64 {
	out := make([]float64, len(iq))
	for i, s := range iq {
		out[i] = b.step(s)
	}
	return out
}

// New builds the Demodulator for a given modulation at the given
// (post-channelizer) sample rate.
func New(mod wire.Modulation, sampleRateHz float64) Demodulator {
	switch mod {
	case wire.ModFM, wire.ModNBFM, wire.ModWBFM:
		return NewFM(sampleRateHz, mod)
	case wire.ModAM, wire.ModNBAM:
		am := NewAM()
		return blockAdapter{step: am.Process}
	case wire.ModUSB:
		ssb := NewSSB(sampleRateHz, true)
		return blockAdapter{step: ssb.Process}
	case wire.ModLSB:
		ssb := NewSSB(sampleRateHz, false)
		return blockAdapter{step: ssb.Process}
	case wire.ModCW:
		cw := NewCW(sampleRateHz)
		return blockAdapter{step: cw.Process}
	default:
		am := NewAM()
		return blockAdapter{step: am.Process}
	}
}
