package ddr

import "math"

// designLowpass returns windowed-sinc linear-phase FIR coefficients for a
// lowpass filter with the given normalized cutoff (cutoffHz/sampleRateHz)
// and tap count, Blackman-windowed for >=60dB stopband attenuation (spec.md
// §4.5 "equivalent linear-phase FIR coefficients achieving the stated
// bandwidth with >= 60 dB stop-band"). No third-party DSP-design library
// in the example corpus generates filter coefficients (gonum's fourier
// package does FFTs, not FIR design), so this follows the teacher's own
// biquad.go precedent of hand-rolled stdlib math for filter coefficients.
func designLowpass(cutoff float64, taps int) []float64 {
	if taps%2 == 0 {
		taps++ // keep an odd, symmetric, integer-delay filter
	}
	h := make([]float64, taps)
	m := taps - 1
	sum := 0.0
	for n := 0; n < taps; n++ {
		k := float64(n) - float64(m)/2
		var sinc float64
		if k == 0 {
			sinc = 2 * cutoff
		} else {
			sinc = math.Sin(2*math.Pi*cutoff*k) / (math.Pi * k)
		}
		window := 0.42 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(m)) + 0.08*math.Cos(4*math.Pi*float64(n)/float64(m))
		h[n] = sinc * window
		sum += h[n]
	}
	for n := range h {
		h[n] /= sum
	}
	return h
}

// FIRDecimator is one stage of the multistage decimation cascade: a
// complex-input FIR lowpass followed by taking every Factor-th output
// sample (spec.md §4.5 step 2).
type FIRDecimator struct {
	taps   []float64
	delay  []complex128
	pos    int
	Factor int
}

// NewFIRDecimator builds a stage with a 60dB-class Blackman-windowed
// lowpass at the given normalized cutoff and the given decimation factor.
func NewFIRDecimator(cutoff float64, numTaps, factor int) *FIRDecimator {
	return &FIRDecimator{
		taps:   designLowpass(cutoff, numTaps),
		delay:  make([]complex128, numTaps),
		Factor: factor,
	}
}

// Process filters and decimates in, appending decimated output samples to
// dst and returning the extended slice. len(in) must be a multiple of
// Factor (spec.md §4.5 "input size must be an integer multiple of the
// stage's decimation factor").
func (f *FIRDecimator) Process(in []complex128, dst []complex128) []complex128 {
	n := len(f.taps)
	for i := 0; i < len(in); i++ {
		copy(f.delay, f.delay[1:])
		f.delay[n-1] = in[i]
		f.pos++
		if f.pos%f.Factor != 0 {
			continue
		}
		var acc complex128
		for k := 0; k < n; k++ {
			acc += complex(f.taps[k], 0) * f.delay[k]
		}
		dst = append(dst, acc)
	}
	return dst
}

// Cascade runs a sequence of decimation stages back to back.
type Cascade struct {
	stages []*FIRDecimator
}

func NewCascade(stages ...*FIRDecimator) *Cascade { return &Cascade{stages: stages} }

// TotalFactor is the cascade's combined decimation ratio.
func (c *Cascade) TotalFactor() int {
	f := 1
	for _, s := range c.stages {
		f *= s.Factor
	}
	return f
}

// Process runs in through every stage in order.
func (c *Cascade) Process(in []complex128) []complex128 {
	buf := make([]complex128, 0, len(in))
	cur := in
	for i, s := range c.stages {
		buf = buf[:0]
		buf = s.Process(cur, buf)
		if i < len(c.stages)-1 {
			next := make([]complex128, len(buf))
			copy(next, buf)
			cur = next
		} else {
			cur = buf
		}
	}
	out := make([]complex128, len(cur))
	copy(out, cur)
	return out
}
