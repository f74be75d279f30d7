package spectral

import (
	"math"
)

// SpectralFlux measures positive spectral change between frames
type SpectralFlux struct{}

// NewSpectralFlux creates a new spectral flux calculator
func NewSpectralFlux() *SpectralFlux {
	return &SpectralFlux{}
}

// OnsetStrength computes a frame-aligned onset envelope: magnitudes are
// log-compressed with log(1 + compression*|X|), the positive change from the
// previous frame is averaged across bins, and frame 0 is defined as zero.
// The envelope has exactly one value per spectrogram frame.
func (sf *SpectralFlux) OnsetStrength(spectrogram [][]float64, compression float64) []float64 {
	envelope := make([]float64, len(spectrogram))
	if len(spectrogram) < 2 {
		return envelope
	}

	prev := compress(spectrogram[0], compression)
	for t := 1; t < len(spectrogram); t++ {
		cur := compress(spectrogram[t], compression)

		sum := 0.0
		for f := range cur {
			if f >= len(prev) {
				break
			}
			if diff := cur[f] - prev[f]; diff > 0 {
				sum += diff
			}
		}
		if len(cur) > 0 {
			envelope[t] = sum / float64(len(cur))
		}
		prev = cur
	}

	return envelope
}

func compress(frame []float64, compression float64) []float64 {
	out := make([]float64, len(frame))
	for i, v := range frame {
		out[i] = math.Log1p(compression * v)
	}
	return out
}
