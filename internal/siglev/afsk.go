package siglev

import "time"

// AFSK reads its signal level out of an in-band AFSK telemetry frame
// instead of computing it from audio power (spec.md's "afsk" plug-in,
// grounded on SigLevDetAfsk.cpp: a remote receiver encodes its own siglev
// measurement into a data frame and this detector just unpacks it).
// It reports 0 if no frame has arrived within Timeout, mirroring the
// original's 3.5s timeout_timer.
type AFSK struct {
	Timeout time.Duration

	last     float32
	lastAt   time.Time
	history  []float32
}

const afskHistoryLen = 20

// NewAFSK builds an AFSK detector with the original's default 3.5s timeout.
func NewAFSK() *AFSK {
	return &AFSK{Timeout: 3500 * time.Millisecond}
}

// FrameReceived unpacks a raw siglev byte (0..255, original scale 0..100
// clamped) from a received telemetry frame.
func (a *AFSK) FrameReceived(frame []byte) {
	if len(frame) < 3 {
		return
	}
	v := frame[2]
	siglev := float32(v)
	if siglev > 100 {
		siglev = 100
	}
	a.last = siglev
	a.lastAt = time.Now()
	a.history = append(a.history, siglev)
	if len(a.history) > afskHistoryLen {
		a.history = a.history[len(a.history)-afskHistoryLen:]
	}
}

// ProcessSamples is a no-op: AFSK's signal level never comes from audio.
func (a *AFSK) ProcessSamples(pcm []float64) {}

func (a *AFSK) LastSiglev() float32 {
	if a.lastAt.IsZero() || time.Since(a.lastAt) > a.Timeout {
		return 0
	}
	return a.last
}

func (a *AFSK) Integrated() float32 {
	if len(a.history) == 0 {
		return a.LastSiglev()
	}
	var sum float32
	for _, v := range a.history {
		sum += v
	}
	return sum / float32(len(a.history))
}

func (a *AFSK) Reset() {
	a.last = 0
	a.lastAt = time.Time{}
	a.history = a.history[:0]
}
