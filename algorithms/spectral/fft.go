package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp for real-valued input
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the Fast Fourier Transform of a real signal
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// go-dsp handles non-power-of-2 sizes as well
	return fft.FFTReal(x)
}

// Magnitude returns |X[k]| for the non-negative frequencies 0..len(x)/2
func (f *FFT) Magnitude(x []float64) []float64 {
	spectrum := f.Compute(x)
	bins := len(x)/2 + 1
	if len(spectrum) < bins {
		bins = len(spectrum)
	}

	mag := make([]float64, bins)
	for i := range bins {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}
