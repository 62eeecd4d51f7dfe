package ddr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPowerSpectrumDBPeaksAtToneBin(t *testing.T) {
	const n = 1024
	const sampleRateHz = 48000
	const toneHz = 6000.0 // exact bin: n * toneHz / sampleRateHz = 128

	iq := make([]complex128, n)
	for i := range iq {
		phase := 2 * math.Pi * toneHz * float64(i) / sampleRateHz
		iq[i] = complex(math.Cos(phase), math.Sin(phase))
	}

	db := PowerSpectrumDB(iq)
	require.Len(t, db, n)

	peakBin := 0
	for i, v := range db {
		if v > db[peakBin] {
			peakBin = i
		}
	}
	require.Equal(t, int(n*toneHz/sampleRateHz), peakBin)

	// every other bin should sit well below the tone's peak.
	for i, v := range db {
		if i == peakBin {
			continue
		}
		require.Less(t, v, db[peakBin]-20)
	}
}

func TestPowerSpectrumDBEmptyInput(t *testing.T) {
	require.Nil(t, PowerSpectrumDB(nil))
}
