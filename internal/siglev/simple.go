package siglev

import "math"

// Sim synthesizes a slowly-varying signal level from a sine generator, for
// testing setups without real radio hardware attached (spec.md's "sim"
// plug-in, grounded on SigLevDetSim.cpp).
type Sim struct {
	Min, Max float64
	PeriodS  float64

	t float64
}

func NewSim(min, max, periodS float64) *Sim {
	return &Sim{Min: min, Max: max, PeriodS: periodS}
}

// Advance moves the simulated clock forward by dt and returns the current
// value. Used by a driver loop in place of ProcessSamples, which is a
// no-op here since Sim never looks at audio.
func (s *Sim) Advance(dt float64) float32 {
	s.t += dt
	mid := (s.Max + s.Min) / 2
	amp := (s.Max - s.Min) / 2
	return float32(mid + amp*math.Sin(2*math.Pi*s.t/s.PeriodS))
}

func (s *Sim) ProcessSamples(pcm []float64) {}
func (s *Sim) LastSiglev() float32          { return s.Advance(0) }
func (s *Sim) Integrated() float32          { return s.Advance(0) }
func (s *Sim) Reset()                       { s.t = 0 }

// Const always reports a fixed configured level (spec.md's "const"
// plug-in, grounded on SigLevDetConst.h): useful for a local TX-only
// receiver with no meaningful signal strength concept.
type Const struct {
	Level float32
}

func NewConst(level float32) *Const { return &Const{Level: level} }

func (c *Const) ProcessSamples(pcm []float64) {}
func (c *Const) LastSiglev() float32          { return c.Level }
func (c *Const) Integrated() float32          { return c.Level }
func (c *Const) Reset()                       {}

// None reports nothing (always 0) — spec.md's "none" plug-in, the default
// for a receiver that never runs a detector at all.
type None struct{}

func (None) ProcessSamples(pcm []float64) {}
func (None) LastSiglev() float32          { return 0 }
func (None) Integrated() float32          { return 0 }
func (None) Reset()                       {}
