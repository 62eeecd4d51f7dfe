package siglev

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoiseReportsZeroBeforeAnySamples(t *testing.T) {
	n := NewNoise(5)
	require.Equal(t, float32(0), n.LastSiglev())
}

func TestNoiseHigherPowerMeansLowerSiglev(t *testing.T) {
	n := NewNoise(5)
	quiet := make([]float64, 256)
	loud := make([]float64, 256)
	for i := range loud {
		loud[i] = 0.9
	}
	n.ProcessSamples(quiet)
	lowNoise := n.LastSiglev()
	n.Reset()
	n.ProcessSamples(loud)
	highNoise := n.LastSiglev()
	require.Less(t, highNoise, lowNoise)
}

func TestToneGoertzelPicksOutMatchingFrequency(t *testing.T) {
	const sampleRate = 8000.0
	const toneHz = 1000.0
	tone := NewTone(sampleRate, toneHz, 256, 5)
	off := NewTone(sampleRate, toneHz, 256, 5)

	pcm := make([]float64, 256)
	for i := range pcm {
		pcm[i] = math.Sin(2 * math.Pi * toneHz * float64(i) / sampleRate)
	}
	tone.ProcessSamples(pcm)

	offTone := make([]float64, 256)
	for i := range offTone {
		offTone[i] = math.Sin(2 * math.Pi * 200 * float64(i) / sampleRate)
	}
	off.ProcessSamples(offTone)

	require.Greater(t, tone.LastSiglev(), off.LastSiglev())
}

func TestDDRUsesPreDemodPower(t *testing.T) {
	d := NewDDR(3)
	d.ProcessIQPower([]complex128{complex(1, 0), complex(0, 1)})
	require.Greater(t, d.LastSiglev(), float32(0))
}

func TestAFSKTimesOutWithoutFrames(t *testing.T) {
	a := NewAFSK()
	a.Timeout = 0 // force immediate timeout for the test
	a.FrameReceived([]byte{0, 0, 50})
	require.Equal(t, float32(0), a.LastSiglev())
}

func TestConstAndNoneAreFixed(t *testing.T) {
	c := NewConst(42)
	require.Equal(t, float32(42), c.LastSiglev())
	var none None
	require.Equal(t, float32(0), none.LastSiglev())
}

func TestSimOscillatesWithinBounds(t *testing.T) {
	s := NewSim(0, 100, 10)
	for i := 0; i < 100; i++ {
		v := s.Advance(0.1)
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(100))
	}
}
