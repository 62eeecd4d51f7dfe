package localrx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValveDropsWhenClosed(t *testing.T) {
	v := NewValve()
	require.False(t, v.IsOpen())
	require.Nil(t, v.Process([]float32{1, 2, 3}))
	v.SetOpen(true)
	require.Equal(t, []float32{1, 2, 3}, v.Process([]float32{1, 2, 3}))
}

func TestClipperClampsToUnitRange(t *testing.T) {
	c := NewClipper()
	out := c.Process([]float32{2.5, -3, 0.2, -0.5})
	require.Equal(t, []float32{1, -1, 0.2, -0.5}, out)
}

func TestLimiterDisabledAtZeroThreshold(t *testing.T) {
	l := NewLimiter(0)
	in := []float32{0.9, -0.9}
	require.Equal(t, in, l.Process(in))
}

func TestLimiterCompressesAboveThreshold(t *testing.T) {
	l := NewLimiter(-6)
	out := l.Process([]float32{0.95})
	require.Less(t, out[0], float32(0.95))
}

func TestPipeDropsAudioWhileValveClosed(t *testing.T) {
	var got []float32
	p := New(Options{}, func(b []float32) { got = b })
	p.Feed([]float32{0.5, 0.5})
	require.Nil(t, got)

	p.SetSquelchOpen(true)
	p.Feed([]float32{0.5, 0.5})
	require.Equal(t, []float32{0.5, 0.5}, got)
}

func TestPipeTapSeesGatedAudio(t *testing.T) {
	var tapped []float32
	p := New(Options{}, func([]float32) {})
	p.Tap.Listen(func(b []float32) { tapped = b })
	p.SetSquelchOpen(true)
	p.Feed([]float32{0.1, 0.2})
	require.Equal(t, []float32{0.1, 0.2}, tapped)
}

func TestDeemphasisIsStable(t *testing.T) {
	d := NewDeemphasis()
	in := make([]float32, 1000)
	for i := range in {
		in[i] = 0.5
	}
	out := d.Process(in)
	for _, v := range out {
		require.LessOrEqual(t, float64(v), 2.0)
		require.GreaterOrEqual(t, float64(v), -2.0)
	}
}
