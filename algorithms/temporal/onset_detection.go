package temporal

import (
	"github.com/RyanBlaney/chordscribe/algorithms/spectral"
	"github.com/RyanBlaney/chordscribe/algorithms/windowing"
	"github.com/RyanBlaney/chordscribe/logging"
)

// OnsetDetection computes onset strength envelopes from audio signals
type OnsetDetection struct {
	spectralFlux *spectral.SpectralFlux
	stft         *spectral.STFT
	sampleRate   int
	windowSize   int
	compression  float64
	logger       logging.Logger
}

// NewOnsetDetection creates a new onset detector using a 2048-point window
func NewOnsetDetection(sampleRate int) *OnsetDetection {
	return &OnsetDetection{
		spectralFlux: spectral.NewSpectralFlux(),
		stft:         spectral.NewSTFT(),
		sampleRate:   sampleRate,
		windowSize:   2048,
		compression:  1.0,
		logger: logging.WithFields(logging.Fields{
			"component": "onset_detection",
		}),
	}
}

// OnsetStrength returns one onset strength value per centered frame, so the
// envelope lines up with any other centered analysis at the same hop size
func (od *OnsetDetection) OnsetStrength(signal []float64, hopSize int) ([]float64, error) {
	if len(signal) == 0 {
		return []float64{}, nil
	}

	stftResult, err := od.stft.ComputeCentered(signal, od.windowSize, hopSize, od.sampleRate, windowing.NewHann(od.windowSize, false))
	if err != nil {
		return nil, err
	}

	envelope := od.spectralFlux.OnsetStrength(stftResult.Magnitude, od.compression)

	od.logger.Debug("Onset envelope computed", logging.Fields{
		"frames": len(envelope),
	})

	return envelope, nil
}

// PickPeaks returns frames that are local maxima of the envelope, at least
// threshold high and minInterval frames apart. A peak must rise above its
// left neighbour; the final frame only has to rise.
func PickPeaks(envelope []float64, threshold float64, minInterval int) []int {
	peaks := []int{}
	lastPeak := -minInterval

	for i := 1; i < len(envelope); i++ {
		next := envelope[i]
		if i+1 < len(envelope) {
			next = envelope[i+1]
		}
		if envelope[i] > envelope[i-1] &&
			envelope[i] >= next &&
			envelope[i] >= threshold &&
			i-lastPeak >= minInterval {
			peaks = append(peaks, i)
			lastPeak = i
		}
	}

	return peaks
}
