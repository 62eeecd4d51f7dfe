package audiocodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testTone(n int) []int16 {
	pcm := make([]int16, n)
	for i := range pcm {
		pcm[i] = int16(1000 * (i % 7))
	}
	return pcm
}

func TestPassthroughRoundTrips(t *testing.T) {
	c, err := New("pcm", 8000, 1, nil)
	require.NoError(t, err)
	defer c.Close()

	pcm := testTone(160)
	enc, err := c.Encode(pcm)
	require.NoError(t, err)
	dec, err := c.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, pcm, dec)
}

func TestZstdRoundTrips(t *testing.T) {
	c, err := New("pcm-zstd", 8000, 1, []Option{{Name: "level", Value: "best"}})
	require.NoError(t, err)
	defer c.Close()

	pcm := testTone(320)
	enc, err := c.Encode(pcm)
	require.NoError(t, err)
	dec, err := c.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, pcm, dec)
}

func TestUnknownCodecNameErrors(t *testing.T) {
	_, err := New("does-not-exist", 8000, 1, nil)
	require.Error(t, err)
}

func TestNamesListsRegisteredCodecs(t *testing.T) {
	names := Names()
	require.Contains(t, names, "pcm")
	require.Contains(t, names, "pcm-zstd")
	require.Contains(t, names, "opus")
}
