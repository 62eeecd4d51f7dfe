package sdr

import "math"

// SimSource synthesizes a wideband IQ stream with no hardware attached,
// for local testing and for cmd/ddrbench: a configurable sum of complex
// tones, so the DDR/demod testable properties (feeding
// a pure complex tone and checking it lands where the channelizer
// placed it) can be exercised without real radio input.
type SimSource struct {
	sampleRateHz int
	tones        []simTone
	blockLen     int
	n            uint64
}

type simTone struct {
	freqHz float64
	amp    float64
}

// NewSimSource starts with no tones, so it produces all-zero blocks; use
// AddTone to build up a synthetic spectrum before registering DDRs
// against it.
func NewSimSource(sampleRateHz int) *SimSource {
	return &SimSource{sampleRateHz: sampleRateHz, blockLen: 4096}
}

// AddTone adds a constant-amplitude complex exponential at freqHz
// (relative to the simulated tuner center) to the synthesized stream.
func (s *SimSource) AddTone(freqHz, amp float64) {
	s.tones = append(s.tones, simTone{freqHz: freqHz, amp: amp})
}

func (s *SimSource) Read() ([]complex128, error) {
	block := make([]complex128, s.blockLen)
	fs := float64(s.sampleRateHz)
	for i := range block {
		n := float64(s.n + uint64(i))
		var acc complex128
		for _, t := range s.tones {
			phase := 2 * math.Pi * t.freqHz * n / fs
			acc += complex(t.amp*math.Cos(phase), t.amp*math.Sin(phase))
		}
		block[i] = acc
	}
	s.n += uint64(s.blockLen)
	return block, nil
}

func (s *SimSource) Close() error { return nil }
