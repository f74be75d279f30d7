package chroma

import (
	"math"

	"github.com/RyanBlaney/chordscribe/algorithms/spectral"
	"github.com/RyanBlaney/chordscribe/algorithms/windowing"
	"gonum.org/v1/gonum/floats"
)

// ChromaCQT computes chromagram using a Constant-Q Transform
//
// DIFFERENCE FROM ChromaSTFT:
// - ChromaSTFT: folds linearly spaced FFT bins directly into pitch classes
// - ChromaCQT: first resamples the spectrum onto logarithmically spaced
//   bins (one per semitone), each with bandwidth proportional to its
//   center frequency, then folds those bins into pitch classes
//
// CQT frequency spacing: f_k = f_min * 2^(k/bins_per_octave)
//
// The transform is computed in the frequency domain: every CQT bin is a
// Gaussian-weighted sum of the power in nearby FFT bins of a long
// (windowSize) STFT frame.
type ChromaCQT struct {
	sampleRate    int
	windowSize    int
	stft          *spectral.STFT
	minFreq       float64 // Lowest CQT bin (C2 ≈ 65.4 Hz)
	maxFreq       float64 // Upper limit for CQT bins
	binsPerOctave int
	qFactor       float64 // Quality factor (frequency/bandwidth)
	tuningFreq    float64 // A4 frequency (default 440 Hz)

	// Pre-computed spectral kernel
	kernel         []cqtKernelBin
	freqBins       []float64
	kernelComputed bool
}

// cqtKernelBin holds the FFT-bin weights feeding one CQT bin
type cqtKernelBin struct {
	firstBin   int
	weights    []float64
	pitchClass int
}

// NewChromaCQT creates a new CQT-based chromagram calculator
func NewChromaCQT(sampleRate, windowSize int, minFreq, maxFreq float64, binsPerOctave int, qFactor, tuningFreq float64) *ChromaCQT {
	return &ChromaCQT{
		sampleRate:    sampleRate,
		windowSize:    windowSize,
		stft:          spectral.NewSTFT(),
		minFreq:       minFreq,
		maxFreq:       maxFreq,
		binsPerOctave: binsPerOctave,
		qFactor:       qFactor,
		tuningFreq:    tuningFreq,
	}
}

// NewChromaCQTDefault creates CQT chromagram with standard musical settings
func NewChromaCQTDefault(sampleRate int) *ChromaCQT {
	return NewChromaCQT(
		sampleRate,
		4096,
		65.4,   // C2
		2093.0, // C7 (5 octaves)
		12,     // semitone resolution
		25.0,
		440.0,
	)
}

// Name identifies the method
func (cqt *ChromaCQT) Name() string {
	return "cqt"
}

// ComputeChroma computes a centered-frame CQT chromagram from audio signal
func (cqt *ChromaCQT) ComputeChroma(signal []float64, hopSize int) (*Chromagram, error) {
	if len(signal) == 0 {
		return &Chromagram{}, nil
	}

	stftResult, err := cqt.stft.ComputeCentered(signal, cqt.windowSize, hopSize, cqt.sampleRate, windowing.NewHann(cqt.windowSize, false))
	if err != nil {
		return nil, err
	}

	if !cqt.kernelComputed {
		cqt.computeKernel(stftResult.FreqBins, stftResult.FreqResolution)
	}

	frames := make([][]float64, stftResult.TimeFrames)
	powerSpectrum := spectral.NewPowerSpectrum()

	for t, magnitude := range stftResult.Magnitude {
		power := powerSpectrum.Compute(magnitude)

		frames[t] = make([]float64, ChromaBins)
		for _, k := range cqt.kernel {
			band := power[k.firstBin : k.firstBin+len(k.weights)]
			frames[t][k.pitchClass] += math.Sqrt(floats.Dot(k.weights, band))
		}

		normalizeMax(frames[t])
	}

	return NewChromagram(frames)
}

// computeKernel pre-computes the spectral weights of every CQT bin
func (cqt *ChromaCQT) computeKernel(numFFTBins int, freqResolution float64) {
	numOctaves := math.Log2(cqt.maxFreq / cqt.minFreq)
	totalBins := int(math.Round(numOctaves * float64(cqt.binsPerOctave)))

	cqt.freqBins = cqt.freqBins[:0]
	cqt.kernel = cqt.kernel[:0]

	for k := range totalBins {
		freq := cqt.minFreq * math.Pow(2.0, float64(k)/float64(cqt.binsPerOctave))

		// Half the bandwidth as standard deviation, never narrower than one FFT bin
		sigma := math.Max(freq/cqt.qFactor/2.0, freqResolution)

		lo := max(int(math.Floor((freq-3*sigma)/freqResolution)), 0)
		hi := min(int(math.Ceil((freq+3*sigma)/freqResolution)), numFFTBins-1)
		if hi < lo {
			continue
		}

		weights := make([]float64, hi-lo+1)
		for i := range weights {
			d := (float64(lo+i)*freqResolution - freq) / sigma
			weights[i] = math.Exp(-0.5 * d * d)
		}

		total := floats.Sum(weights)
		if total <= 0 {
			continue
		}
		floats.Scale(1/total, weights)

		cqt.freqBins = append(cqt.freqBins, freq)
		cqt.kernel = append(cqt.kernel, cqtKernelBin{
			firstBin:   lo,
			weights:    weights,
			pitchClass: pitchClass(frequencyToMIDI(freq, cqt.tuningFreq)),
		})
	}

	cqt.kernelComputed = true
}

// GetCQTFrequencies returns the center frequencies of the CQT bins
func (cqt *ChromaCQT) GetCQTFrequencies() []float64 {
	freqs := make([]float64, len(cqt.freqBins))
	copy(freqs, cqt.freqBins)
	return freqs
}

// SetTuning updates the tuning frequency and forces the kernel to be rebuilt
func (cqt *ChromaCQT) SetTuning(tuningFreq float64) {
	cqt.tuningFreq = tuningFreq
	cqt.kernelComputed = false
}
