package demod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kb9vy/nettrxd/internal/wire"
)

func TestFMDiscriminatorTracksToneDeviation(t *testing.T) {
	const sampleRate = 16000.0
	const devHz = 2500.0 // NBFM max deviation (full-scale)
	fm := NewFM(sampleRate, wire.ModNBFM)

	phaseInc := 2 * math.Pi * devHz / sampleRate
	phase := 0.0
	var peak float64
	for n := 0; n < 2000; n++ {
		i, q := math.Cos(phase), math.Sin(phase)
		out := fm.Process(i, q)
		if math.Abs(out) > peak {
			peak = math.Abs(out)
		}
		phase += phaseInc
	}
	// A constant-frequency tone at exactly max_dev should settle near the
	// headroom-scaled peak (1/2 at the default 6dB headroom).
	require.InDelta(t, 0.5, peak, 0.05)
}

func TestAGCGainDecaysTowardReference(t *testing.T) {
	agc := NewAGC(1.0, 0.01, 1.0, 200)
	// Feed a strong, constant-amplitude signal; gain should fall from its
	// initial unity value toward a steady state near
	// sqrt(reference)/|s| = 0.1.
	for n := 0; n < 5000; n++ {
		agc.Apply(complex(10, 0))
	}
	require.Less(t, agc.Gain(), 1.0)
	require.Greater(t, agc.Gain(), 0.0)
}

func TestAGCGainClampedToMaxGain(t *testing.T) {
	agc := NewAGC(100, 0.04, 0.05, 200)
	// No signal: gain climbs by 0.05*0.04 per sample, so 200000 samples
	// take it well past 200 and into the clamp.
	for n := 0; n < 200000; n++ {
		agc.Apply(complex(0, 0))
	}
	require.LessOrEqual(t, agc.Gain(), 200.0)
}

func TestSSBTranslatesSidebandToBaseband(t *testing.T) {
	const sampleRate = 16000.0
	ssb := NewSSB(sampleRate, true)
	// The USB translation shifts by +2kHz, so this +2kHz tone lands at
	// +4kHz; the output must stay finite while the AGC settles.
	phaseInc := 2 * math.Pi * 2000.0 / sampleRate
	phase := 0.0
	var last float64
	for n := 0; n < 500; n++ {
		s := complex(math.Cos(phase), math.Sin(phase))
		last = ssb.Process(s)
		phase += phaseInc
	}
	require.False(t, math.IsNaN(last))
}

func TestNewDispatchesByModulation(t *testing.T) {
	for _, mod := range []wire.Modulation{wire.ModFM, wire.ModNBFM, wire.ModWBFM, wire.ModAM, wire.ModNBAM, wire.ModUSB, wire.ModLSB, wire.ModCW} {
		d := New(mod, 16000)
		out := d.ProcessBlock([]complex128{complex(1, 0), complex(0, 1), complex(-1, 0)})
		require.Len(t, out, 3)
	}
}
