package ddr

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kb9vy/nettrxd/internal/wire"
)

func TestPlaceCenterSingleDDR(t *testing.T) {
	p := PlaceCenter([]float64{146520000}, 2400000)
	// A lone DDR would sit on DC, so the center is nudged 12.5kHz below it.
	require.Equal(t, 146520000.0-12500, p.CenterHz)
	require.True(t, p.Fits[146520000])
}

func TestPlaceCenterNudgesAwayFromDC(t *testing.T) {
	// Two DDRs straddling a common center that would land within 12.5kHz
	// of DC for one of them.
	p := PlaceCenter([]float64{146520000, 146520000 + 5000}, 2400000)
	require.NotEqual(t, 0.0, p.CenterHz-146520000-2500)
	for f, ok := range p.Fits {
		require.Truef(t, ok, "freq %f should fit within a 2.4Msps span", f)
	}
}

func TestPlaceCenterDropsOutliers(t *testing.T) {
	freqs := []float64{146000000, 146010000, 146020000, 148500000}
	p := PlaceCenter(freqs, 960000)
	require.False(t, p.Fits[148500000], "far outlier should be dropped")
}

func TestMixerLUTIsPeriodic(t *testing.T) {
	m := NewMixer(1000, 48000)
	period := len(m.lut)
	require.Greater(t, period, 0)
	first := make([]complex128, period)
	for i := range first {
		first[i] = m.Process(1)
	}
	second := make([]complex128, period)
	for i := range second {
		second[i] = m.Process(1)
	}
	for i := range first {
		require.InDelta(t, real(first[i]), real(second[i]), 1e-9)
		require.InDelta(t, imag(first[i]), imag(second[i]), 1e-9)
	}
}

func TestCascadeAchievesTargetDecimation(t *testing.T) {
	c, err := NewChannelCascade(2400000, Class3K)
	require.NoError(t, err)
	require.Equal(t, 2400000/16000, c.TotalFactor())

	in := make([]complex128, 2400000/10) // 100ms block
	for i := range in {
		in[i] = complex(math.Sin(float64(i)), 0)
	}
	out := c.Process(in)
	require.InDelta(t, len(in)/c.TotalFactor(), len(out), 2)
}

func TestDDRFeedAndDrainDoesNotDeadlock(t *testing.T) {
	params := Params{
		ChannelFqHz:     146520000,
		TunerCenterFqHz: 146500000,
		Class:           Class10K,
		Modulation:      wire.ModNBFM,
	}
	var mu sync.Mutex
	var pcmBlocks int
	d, err := New(960000, params, 10*960000, nil, func(pcm []float64) {
		mu.Lock()
		pcmBlocks++
		mu.Unlock()
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	block := make([]complex128, 9600)
	for i := range block {
		block[i] = complex(math.Cos(float64(i)*0.01), math.Sin(float64(i)*0.01))
	}
	for i := 0; i < 5; i++ {
		d.Feed(block)
	}
	d.Close()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Greater(t, pcmBlocks, 0)
}
