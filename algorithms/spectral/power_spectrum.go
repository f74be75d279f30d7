package spectral

// PowerSpectrum squares magnitude spectra
type PowerSpectrum struct{}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{}
}

// Compute returns |X|^2 for one magnitude frame
func (ps *PowerSpectrum) Compute(magnitudeSpectrum []float64) []float64 {
	power := make([]float64, len(magnitudeSpectrum))
	for i, mag := range magnitudeSpectrum {
		power[i] = mag * mag
	}
	return power
}

// ComputeFromSTFT returns the power spectrogram (time x frequency)
func (ps *PowerSpectrum) ComputeFromSTFT(stftResult *STFTResult) [][]float64 {
	power := make([][]float64, len(stftResult.Magnitude))
	for t, magnitude := range stftResult.Magnitude {
		power[t] = ps.Compute(magnitude)
	}
	return power
}
