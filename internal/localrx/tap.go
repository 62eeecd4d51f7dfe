package localrx

// Tap forwards every block it sees, unmodified, to a side listener —
// the "tone/DTMF tap" stage of LocalRxBase.cpp's chain, where a
// ToneDetector/DtmfDecoder/Sel5Decoder sits off the main audio path and
// watches the same samples the valve just gated. Listeners are called
// synchronously on the audio-processing goroutine, matching the
// source's single-threaded audio pipe.
type Tap struct {
	listeners []func([]float32)
}

func NewTap() *Tap { return &Tap{} }

// Listen registers a side listener. Detectors (tone, DTMF, CTCSS)
// attach here rather than being wired directly into the pipe.
func (t *Tap) Listen(f func([]float32)) {
	t.listeners = append(t.listeners, f)
}

func (t *Tap) Process(in []float32) []float32 {
	for _, l := range t.listeners {
		l(in)
	}
	return in
}
