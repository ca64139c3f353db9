package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns |X_k|²/n for the non-negative frequencies of data
// and the frequency of each bin in Hz, given the sampling interval dt.
func PowerSpectrum(data []float64, dt float64) (power, freqs []float64) {
	n := len(data)
	if n < 2 || !(dt > 0) {
		return nil, nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	power = make([]float64, len(coeffs))
	freqs = make([]float64, len(coeffs))
	for i, c := range coeffs {
		a := cmplx.Abs(c)
		power[i] = a * a / float64(n)
		freqs[i] = fft.Freq(i) / dt
	}
	return power, freqs
}

// DominantFrequency is the frequency of the strongest non-constant bin.
func DominantFrequency(data []float64, dt float64) float64 {
	power, freqs := PowerSpectrum(data, dt)
	best := 0
	for i := 1; i < len(power); i++ {
		if best == 0 || power[i] > power[best] {
			best = i
		}
	}
	if best == 0 {
		return 0
	}
	return freqs[best]
}
