package localrx

import "math"

// Limiter is a soft compressor ahead of the hard Clipper, grounded on
// LocalRxBase.cpp's AudioCompressor stage ("smoothly limit the audio
// before hard clipping it"), gated by a configurable threshold in dBFS;
// a zero threshold disables it, matching DEFAULT_LIMITER_THRESH's
// "!= 0.0" enable check.
type Limiter struct {
	thresholdDB float64
	thresholdV  float64
	enabled     bool
}

// NewLimiter builds a Limiter at thresholdDB (dBFS, e.g. -1.0); passing
// 0 disables it entirely and Process becomes a no-op.
func NewLimiter(thresholdDB float64) *Limiter {
	l := &Limiter{thresholdDB: thresholdDB, enabled: thresholdDB != 0}
	l.thresholdV = math.Pow(10, thresholdDB/20)
	return l
}

// Process applies a soft-knee gain reduction above the threshold,
// leaving samples below it untouched.
func (l *Limiter) Process(in []float32) []float32 {
	if !l.enabled {
		return in
	}
	out := make([]float32, len(in))
	for i, x := range in {
		mag := math.Abs(float64(x))
		if mag <= l.thresholdV {
			out[i] = x
			continue
		}
		over := mag - l.thresholdV
		compressed := l.thresholdV + over/(1+over*4)
		if x < 0 {
			compressed = -compressed
		}
		out[i] = float32(compressed)
	}
	return out
}

// Clipper hard-clips samples to [-1, 1], the final stage before the
// sink (grounded on AsyncAudioClipper), guaranteeing no downstream
// consumer ever sees an out-of-range sample regardless of what earlier
// gain stages did.
type Clipper struct{}

func NewClipper() *Clipper { return &Clipper{} }

func (c *Clipper) Process(in []float32) []float32 {
	out := make([]float32, len(in))
	for i, x := range in {
		switch {
		case x > 1:
			out[i] = 1
		case x < -1:
			out[i] = -1
		default:
			out[i] = x
		}
	}
	return out
}
