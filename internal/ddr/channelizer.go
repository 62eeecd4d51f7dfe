// Package ddr implements the Digital Drop Receiver channelizer (spec.md
// §4.5, component J): per-channel translate + multistage decimate,
// feeding a demodulator (internal/demod) from a tuner's
// wideband IQ stream (internal/sdr).
package ddr

import "fmt"

// BandwidthClass is one of the six channel bandwidth classes spec.md §4.5
// enumerates, each with a fixed output rate and intended modulation.
type BandwidthClass int

const (
	ClassWide BandwidthClass = iota
	Class20K
	Class10K
	Class6K
	Class3K
	Class500
)

// OutputRateHz returns the nominal output sample rate for a class at a
// given tuner input rate, per spec.md §4.5's table (WIDE differs between
// the two supported tuner rates; the rest are fixed).
func OutputRateHz(class BandwidthClass, tunerRateHz int) int {
	switch class {
	case ClassWide:
		if tunerRateHz == 960000 {
			return 192000
		}
		return 160000
	case Class20K:
		return 32000
	case Class10K, Class6K, Class3K, Class500:
		return 16000
	default:
		return 16000
	}
}

// cascadeFactors returns the per-stage decimation factors for (tunerRateHz,
// class), chosen so their product equals tunerRateHz/OutputRateHz and no
// single stage exceeds a factor of ~10 (keeps each stage's FIR short).
func cascadeFactors(tunerRateHz int, class BandwidthClass) ([]int, error) {
	total := tunerRateHz / OutputRateHz(class, tunerRateHz)
	if total*OutputRateHz(class, tunerRateHz) != tunerRateHz {
		return nil, fmt.Errorf("ddr: tuner rate %d not an integer multiple of class output rate", tunerRateHz)
	}
	var factors []int
	remaining := total
	for remaining > 1 {
		stage := remaining
		for stage > 10 {
			// pick the largest small divisor <=10
			found := false
			for d := 10; d >= 2; d-- {
				if stage%d == 0 {
					stage = d
					found = true
					break
				}
			}
			if !found {
				stage = 2
			}
		}
		factors = append(factors, stage)
		remaining /= stage
	}
	if len(factors) == 0 {
		factors = []int{1}
	}
	return factors, nil
}

// NewChannelCascade builds the multistage FIR decimation cascade for
// (tunerRateHz, class). Each stage gets a Blackman-windowed lowpass with a
// cutoff at 80% of the post-stage Nyquist. The cutoff depends only on the
// stage rates, so classes that share an output rate (10K, 6K, 3K, 500)
// get the same cascade; no narrower per-class channel filter is applied.
func NewChannelCascade(tunerRateHz int, class BandwidthClass) (*Cascade, error) {
	factors, err := cascadeFactors(tunerRateHz, class)
	if err != nil {
		return nil, err
	}
	stages := make([]*FIRDecimator, 0, len(factors))
	rate := tunerRateHz
	for _, f := range factors {
		outRate := rate / f
		cutoff := (float64(outRate) / 2 * 0.8) / float64(rate)
		numTaps := 8*f + 1
		stages = append(stages, NewFIRDecimator(cutoff, numTaps, f))
		rate = outRate
	}
	return NewCascade(stages...), nil
}
