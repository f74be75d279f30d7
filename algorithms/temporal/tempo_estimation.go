package temporal

import (
	"math"
)

// TempoEstimation estimates a global tempo from an onset strength envelope
type TempoEstimation struct {
	StartBPM  float64 // Center of the tempo prior
	StdOctave float64 // Width of the prior in octaves
	MinBPM    float64
	MaxBPM    float64
}

// NewTempoEstimation creates a new tempo estimator centered on 120 BPM
func NewTempoEstimation() *TempoEstimation {
	return &TempoEstimation{
		StartBPM:  120.0,
		StdOctave: 1.0,
		MinBPM:    30.0,
		MaxBPM:    320.0,
	}
}

// EstimateTempo returns the tempo in BPM whose period best explains the
// envelope's autocorrelation, weighted by a log-normal prior around StartBPM.
// When the envelope carries no periodicity StartBPM is returned.
func (te *TempoEstimation) EstimateTempo(envelope []float64, sampleRate, hopSize int) float64 {
	fpm := framesPerMinute(sampleRate, hopSize)

	minLag := max(int(math.Floor(fpm/te.MaxBPM)), 1)
	maxLag := min(int(math.Ceil(fpm/te.MinBPM)), len(envelope)-1)
	if maxLag < minLag {
		return te.StartBPM
	}

	autocorr := te.calculateAutocorrelation(envelope, maxLag+1)

	bestScore := 0.0
	bestLag := 0

	for lag := minLag; lag <= maxLag; lag++ {
		bpm := fpm / float64(lag)
		score := autocorr[lag] * te.prior(bpm)
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return te.StartBPM
	}

	return fpm / float64(bestLag)
}

// prior is a log-normal weight on tempo measured in octaves from StartBPM
func (te *TempoEstimation) prior(bpm float64) float64 {
	octaves := math.Log2(bpm/te.StartBPM) / te.StdOctave
	return math.Exp(-0.5 * octaves * octaves)
}

// calculateAutocorrelation returns unnormalized autocorrelation for lags 0..maxLag-1
func (te *TempoEstimation) calculateAutocorrelation(signal []float64, maxLag int) []float64 {
	if maxLag > len(signal) {
		maxLag = len(signal)
	}

	autocorr := make([]float64, maxLag)

	for lag := range maxLag {
		sum := 0.0
		for i := 0; i < len(signal)-lag; i++ {
			sum += signal[i] * signal[i+lag]
		}
		autocorr[lag] = sum
	}

	return autocorr
}
