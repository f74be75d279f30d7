package chords

import (
	"fmt"

	"github.com/RyanBlaney/chordscribe/algorithms/chroma"
	"github.com/RyanBlaney/chordscribe/algorithms/temporal"
	"github.com/RyanBlaney/chordscribe/logging"
)

// Features holds everything chord estimation needs from one recording
type Features struct {
	Chroma     *chroma.Chromagram `json:"-"`
	Beats      []int              `json:"beats"`
	Tempo      float64            `json:"tempo"`
	SampleRate int                `json:"sample_rate"`
	HopLength  int                `json:"hop_length"`
}

// FeatureExtractor turns mono PCM samples into chroma and beat features
type FeatureExtractor interface {
	Extract(pcm []float64, sampleRate int) (*Features, error)
}

// AnalysisExtractor computes features with the algorithms packages
type AnalysisExtractor struct {
	config      *Config
	chroma      chroma.Computer
	onset       *temporal.OnsetDetection
	tempo       *temporal.TempoEstimation
	beatTracker *temporal.BeatTracker
	logger      logging.Logger
}

// NewAnalysisExtractor creates an extractor for the configured chroma method
func NewAnalysisExtractor(config *Config) (*AnalysisExtractor, error) {
	if config == nil {
		config = DefaultConfig()
	}

	computer, err := newChromaComputer(config)
	if err != nil {
		return nil, err
	}

	tempo := temporal.NewTempoEstimation()
	tempo.StartBPM = config.StartBPM

	beatTracker := temporal.NewBeatTracker()
	beatTracker.Tightness = config.Tightness
	beatTracker.Trim = config.TrimBeats

	return &AnalysisExtractor{
		config:      config,
		chroma:      computer,
		onset:       temporal.NewOnsetDetection(config.SampleRate),
		tempo:       tempo,
		beatTracker: beatTracker,
		logger: logging.WithFields(logging.Fields{
			"component": "analysis_extractor",
		}),
	}, nil
}

func newChromaComputer(config *Config) (chroma.Computer, error) {
	switch config.ChromaMethod {
	case ChromaCQT:
		cqt := chroma.NewChromaCQTDefault(config.SampleRate)
		cqt.SetTuning(config.TuningFreq)
		return cqt, nil
	case ChromaSTFT:
		return chroma.NewChromaSTFT(config.SampleRate, 4096, config.TuningFreq), nil
	default:
		return nil, fmt.Errorf("%w: unknown chroma method %q", ErrInvalidConfig, config.ChromaMethod)
	}
}

// Extract computes the chromagram, tempo and beat frames of the samples
func (ae *AnalysisExtractor) Extract(pcm []float64, sampleRate int) (*Features, error) {
	logger := ae.logger.WithFields(logging.Fields{
		"function": "Extract",
		"samples":  len(pcm),
	})

	if len(pcm) == 0 {
		return nil, ErrEmptyAudio
	}
	if sampleRate != ae.config.SampleRate {
		return nil, fmt.Errorf("%w: got %d Hz audio, extractor runs at %d Hz",
			ErrInvalidConfig, sampleRate, ae.config.SampleRate)
	}

	hop := ae.config.HopLength

	chromagram, err := ae.chroma.ComputeChroma(pcm, hop)
	if err != nil {
		return nil, fmt.Errorf("chroma (%s): %w", ae.chroma.Name(), err)
	}

	envelope, err := ae.onset.OnsetStrength(pcm, hop)
	if err != nil {
		return nil, fmt.Errorf("onset strength: %w", err)
	}

	bpm := ae.tempo.EstimateTempo(envelope, sampleRate, hop)
	beats := ae.beatTracker.TrackBeats(envelope, bpm, sampleRate, hop)

	logger.Info("Features extracted", logging.Fields{
		"chroma_method": ae.chroma.Name(),
		"frames":        chromagram.Frames(),
		"tempo":         bpm,
		"beats":         len(beats),
	})

	return &Features{
		Chroma:     chromagram,
		Beats:      beats,
		Tempo:      bpm,
		SampleRate: sampleRate,
		HopLength:  hop,
	}, nil
}
