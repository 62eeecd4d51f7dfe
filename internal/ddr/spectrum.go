package ddr

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrumDB returns the two-sided power spectrum of iq in dB, one
// bin per input sample (bins above len/2 are negative frequencies), using the same FFT-based approach the
// teacher's waterfall/spectrum-analyzer extensions use for their
// spectral taps. Intended as a diagnostic off the DDR's PreDemodSink,
// not as part of the demodulation path itself.
func PowerSpectrumDB(iq []complex128) []float64 {
	if len(iq) == 0 {
		return nil
	}
	fft := fourier.NewCmplxFFT(len(iq))
	coeffs := fft.Coefficients(nil, iq)

	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		power := real(c)*real(c) + imag(c)*imag(c)
		out[i] = powerToDB(power)
	}
	return out
}

func powerToDB(power float64) float64 {
	if power <= 0 {
		return -300
	}
	return 10 * math.Log10(power)
}
