package windowing

import (
	"fmt"

	"github.com/mjibson/go-dsp/window"
)

// Hann represents a Hann window function
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a new Hann window. Spectral analysis frames use the
// periodic form (symmetric=false).
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      size,
		symmetric: symmetric,
	}
	h.generate()
	return h
}

// generate creates Hann window coefficients. The periodic window of length N
// is the first N points of the symmetric window of length N+1.
func (h *Hann) generate() {
	if h.size <= 0 {
		h.coefficients = []float64{}
		return
	}
	if h.size == 1 {
		h.coefficients = []float64{1}
		return
	}

	if h.symmetric {
		h.coefficients = window.Hann(h.size)
		return
	}
	h.coefficients = window.Hann(h.size + 1)[:h.size]
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := range h.size {
		signal[i] *= h.coefficients[i]
	}

	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hann) GetCoefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}
