package chords

import (
	"fmt"

	"github.com/RyanBlaney/chordscribe/transcode"
)

// Chroma methods accepted by Config.ChromaMethod
const (
	ChromaCQT  = "cqt"
	ChromaSTFT = "stft"
)

// Config holds configuration for chord detection
type Config struct {
	SampleRate   int     `json:"sample_rate"`
	HopLength    int     `json:"hop_length"`
	ChromaMethod string  `json:"chroma_method"` // "cqt", "stft"
	TuningFreq   float64 `json:"tuning_freq"`   // A4 reference in Hz

	// Beat tracking
	StartBPM  float64 `json:"start_bpm"`
	Tightness float64 `json:"tightness"`
	TrimBeats bool    `json:"trim_beats"`

	Decoder *transcode.DecoderConfig `json:"decoder"`
}

// DefaultConfig returns the standard analysis settings: 22050 Hz, hop 512,
// CQT chroma tuned to A4 = 440 Hz
func DefaultConfig() *Config {
	return &Config{
		SampleRate:   22050,
		HopLength:    512,
		ChromaMethod: ChromaCQT,
		TuningFreq:   440.0,
		StartBPM:     120.0,
		Tightness:    100.0,
		TrimBeats:    true,
		Decoder:      transcode.DefaultDecoderConfig(),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.HopLength <= 0 {
		return fmt.Errorf("%w: hop length must be positive: %d", ErrInvalidConfig, c.HopLength)
	}

	switch c.ChromaMethod {
	case ChromaCQT, ChromaSTFT:
	default:
		return fmt.Errorf("%w: unknown chroma method %q", ErrInvalidConfig, c.ChromaMethod)
	}

	if c.TuningFreq <= 0 {
		return fmt.Errorf("%w: tuning frequency must be positive: %g", ErrInvalidConfig, c.TuningFreq)
	}
	if c.StartBPM <= 0 {
		return fmt.Errorf("%w: start tempo must be positive: %g", ErrInvalidConfig, c.StartBPM)
	}
	if c.Tightness < 0 {
		return fmt.Errorf("%w: tightness must not be negative: %g", ErrInvalidConfig, c.Tightness)
	}

	if c.Decoder == nil {
		return fmt.Errorf("%w: decoder configuration is required", ErrInvalidConfig)
	}
	if c.Decoder.TargetSampleRate != c.SampleRate {
		return fmt.Errorf("%w: decoder sample rate %d differs from analysis sample rate %d",
			ErrInvalidConfig, c.Decoder.TargetSampleRate, c.SampleRate)
	}
	if c.Decoder.TargetChannels != 1 {
		return fmt.Errorf("%w: analysis requires mono audio, decoder yields %d channels",
			ErrInvalidConfig, c.Decoder.TargetChannels)
	}
	if err := transcode.NewDecoder(c.Decoder).ValidateConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}
