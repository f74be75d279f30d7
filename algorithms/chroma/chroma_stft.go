package chroma

import (
	"math"

	"github.com/RyanBlaney/chordscribe/algorithms/spectral"
	"github.com/RyanBlaney/chordscribe/algorithms/windowing"
)

// ChromaSTFT computes chromagram using Short-Time Fourier Transform
//
// DIFFERENCE FROM spectral/stft.go:
// - spectral/stft.go: Generic STFT for any spectral analysis
// - chroma/chroma_stft.go: Specialized for pitch class analysis
//   - Maps frequencies to 12 semitone bins (C, C#, D, D#, E, F, F#, G, G#, A, A#, B)
//   - Octave-folded representation (all C notes map to same bin)
//   - Tuning frequency adjustable (default A4=440Hz)
type ChromaSTFT struct {
	sampleRate int
	windowSize int
	stft       *spectral.STFT
	tuningFreq float64 // A4 frequency (default 440 Hz)
	minFreq    float64 // Minimum frequency to consider
	maxFreq    float64 // Maximum frequency to consider
}

// NewChromaSTFT creates a new STFT-based chromagram calculator
func NewChromaSTFT(sampleRate, windowSize int, tuningFreq float64) *ChromaSTFT {
	return &ChromaSTFT{
		sampleRate: sampleRate,
		windowSize: windowSize,
		stft:       spectral.NewSTFT(),
		tuningFreq: tuningFreq,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
	}
}

// NewChromaSTFTDefault creates chromagram with a 4096-point window and A4=440Hz tuning
func NewChromaSTFTDefault(sampleRate int) *ChromaSTFT {
	return NewChromaSTFT(sampleRate, 4096, 440.0)
}

// Name identifies the method
func (cs *ChromaSTFT) Name() string {
	return "stft"
}

// ComputeChroma computes a centered-frame chromagram from audio signal
func (cs *ChromaSTFT) ComputeChroma(signal []float64, hopSize int) (*Chromagram, error) {
	if len(signal) == 0 {
		return &Chromagram{}, nil
	}

	stftResult, err := cs.stft.ComputeCentered(signal, cs.windowSize, hopSize, cs.sampleRate, windowing.NewHann(cs.windowSize, false))
	if err != nil {
		return nil, err
	}

	return NewChromagram(cs.convertSTFTToChroma(stftResult))
}

// convertSTFTToChroma folds a magnitude spectrogram into pitch classes (time x 12)
func (cs *ChromaSTFT) convertSTFTToChroma(stftResult *spectral.STFTResult) [][]float64 {
	frames := make([][]float64, stftResult.TimeFrames)
	chromaMapping := cs.calculateChromaMapping(stftResult.FreqBins, stftResult.FreqResolution)

	for t, power := range spectral.NewPowerSpectrum().ComputeFromSTFT(stftResult) {
		frames[t] = make([]float64, ChromaBins)

		for f, p := range power {
			chromaBin := chromaMapping[f]
			if chromaBin >= 0 {
				frames[t][chromaBin] += p
			}
		}

		normalizeMax(frames[t])
	}

	return frames
}

// calculateChromaMapping maps FFT bins to chroma bins, -1 for bins outside the range
func (cs *ChromaSTFT) calculateChromaMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := range freqBins {
		frequency := float64(f) * freqResolution

		if frequency < cs.minFreq || frequency > cs.maxFreq {
			mapping[f] = -1
			continue
		}

		mapping[f] = pitchClass(frequencyToMIDI(frequency, cs.tuningFreq))
	}

	return mapping
}

// SetTuning updates the tuning frequency (A4)
func (cs *ChromaSTFT) SetTuning(tuningFreq float64) {
	cs.tuningFreq = tuningFreq
}

// frequencyToMIDI converts frequency to MIDI note number: 69 + 12*log2(f/A4)
func frequencyToMIDI(frequency, tuningFreq float64) float64 {
	if frequency <= 0 {
		return 0
	}
	return 69.0 + 12.0*math.Log2(frequency/tuningFreq)
}

// pitchClass rounds a MIDI note number to its pitch class 0..11
func pitchClass(midiNote float64) int {
	pc := int(math.Round(midiNote)) % ChromaBins
	if pc < 0 {
		pc += ChromaBins
	}
	return pc
}
