package spectral

import (
	"fmt"

	"github.com/RyanBlaney/chordscribe/logging"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft    *FFT
	logger logging.Logger
}

// STFTResult holds the magnitude spectrogram of a signal
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// Window is anything that can taper a frame in place
type Window interface {
	ApplyInPlace(signal []float64) error
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// FrameCount returns the number of centered frames for a signal of n samples
func FrameCount(n, hopSize int) int {
	if n <= 0 || hopSize <= 0 {
		return 0
	}
	return 1 + n/hopSize
}

// ComputeCentered computes a magnitude STFT with centered frames: the signal
// is zero-padded by windowSize/2 on both sides so frame t is centered on
// sample t*hopSize. The result always has FrameCount(len(signal), hopSize)
// frames, which keeps spectrograms of different window sizes aligned.
func (s *STFT) ComputeCentered(signal []float64, windowSize, hopSize, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}

	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	pad := windowSize / 2
	padded := make([]float64, len(signal)+2*pad)
	copy(padded[pad:], signal)

	numFrames := FrameCount(len(signal), hopSize)
	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	frame := make([]float64, windowSize)

	for t := range numFrames {
		start := t * hopSize
		end := start + windowSize

		clear(frame)
		if start < len(padded) {
			copy(frame, padded[start:min(end, len(padded))])
		}

		if window != nil {
			if err := window.ApplyInPlace(frame); err != nil {
				return nil, fmt.Errorf("apply window: %w", err)
			}
		}

		magnitude[t] = s.fft.Magnitude(frame)
	}

	s.logger.Debug("Centered STFT computed", logging.Fields{
		"frames":      numFrames,
		"window_size": windowSize,
		"hop_size":    hopSize,
	})

	return &STFTResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}, nil
}
