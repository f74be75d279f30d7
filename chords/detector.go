package chords

import (
	"context"
	"fmt"
	"io"

	"github.com/RyanBlaney/chordscribe/algorithms/tonal"
	"github.com/RyanBlaney/chordscribe/logging"
	"github.com/RyanBlaney/chordscribe/transcode"
)

// StdinSource names audio read from standard input
const StdinSource = "-"

// AudioLoader decodes a file or a stream into mono PCM samples
type AudioLoader interface {
	DecodeFile(ctx context.Context, filename string) (*transcode.AudioData, error)
	DecodeReader(ctx context.Context, reader io.Reader) (*transcode.AudioData, error)
}

// toolChecker is implemented by loaders that depend on external programs
type toolChecker interface {
	CheckAvailability(ctx context.Context) error
}

// Detector runs the full chord detection pipeline for one file at a time
type Detector struct {
	config    *Config
	loader    AudioLoader
	extractor FeatureExtractor
	logger    logging.Logger
}

// NewDetector creates a detector that decodes with ffmpeg and extracts
// features with the configured chroma method
func NewDetector(config *Config) (*Detector, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	extractor, err := NewAnalysisExtractor(config)
	if err != nil {
		return nil, err
	}

	return NewDetectorWithComponents(config, transcode.NewDecoder(config.Decoder), extractor), nil
}

// NewDetectorWithComponents creates a detector from explicit collaborators
func NewDetectorWithComponents(config *Config, loader AudioLoader, extractor FeatureExtractor) *Detector {
	if config == nil {
		config = DefaultConfig()
	}

	return &Detector{
		config:    config,
		loader:    loader,
		extractor: extractor,
		logger: logging.WithFields(logging.Fields{
			"component": "chord_detector",
		}),
	}
}

// CheckTools verifies that the loader's external programs can run. Loaders
// without external programs always pass.
func (d *Detector) CheckTools(ctx context.Context) error {
	checker, ok := d.loader.(toolChecker)
	if !ok {
		return nil
	}
	return checker.CheckAvailability(ctx)
}

// Detect decodes the file and returns one chord per beat segment. Errors wrap
// transcode.ErrDecode, ErrEmptyAudio, ErrInvalidBeats or ErrBeatOutOfRange.
func (d *Detector) Detect(ctx context.Context, filename string) ([]TimedChord, error) {
	audio, err := d.loader.DecodeFile(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return d.analyze(ctx, audio, filename)
}

// DetectReader is Detect for audio streamed from r
func (d *Detector) DetectReader(ctx context.Context, r io.Reader) ([]TimedChord, error) {
	audio, err := d.loader.DecodeReader(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load stdin: %w", err)
	}
	return d.analyze(ctx, audio, StdinSource)
}

func (d *Detector) analyze(ctx context.Context, audio *transcode.AudioData, source string) ([]TimedChord, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "analyze",
		"source":   source,
	})

	if audio == nil || len(audio.PCM) == 0 {
		return nil, fmt.Errorf("load %s: %w", source, ErrEmptyAudio)
	}

	logger.Debug("Audio decoded", logging.Fields{
		"samples":     len(audio.PCM),
		"sample_rate": audio.SampleRate,
		"duration":    audio.Duration.String(),
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features, err := d.extractor.Extract(audio.PCM, audio.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}

	result, err := EstimateChords(features)
	if err != nil {
		return nil, fmt.Errorf("estimate chords: %w", err)
	}

	for _, tc := range result {
		logger.Debug("Chord estimated", logging.Fields{
			"time":    tc.Time,
			"root":    tonal.PitchClassNames[tc.Chord.Root],
			"quality": tonal.GetChordQualityName(tc.Chord.Quality),
		})
	}

	logger.Info("Chord detection complete", logging.Fields{
		"beats":  len(features.Beats),
		"chords": len(result),
		"tempo":  features.Tempo,
	})

	return result, nil
}

// DetectBestEffort never fails: any error is reported to w as
// "Error processing audio: <err>" and an empty list is returned
func (d *Detector) DetectBestEffort(ctx context.Context, filename string, w io.Writer) []TimedChord {
	result, err := d.Detect(ctx, filename)
	return d.bestEffort(w, filename, result, err)
}

// DetectReaderBestEffort is DetectBestEffort for audio streamed from r
func (d *Detector) DetectReaderBestEffort(ctx context.Context, r io.Reader, w io.Writer) []TimedChord {
	result, err := d.DetectReader(ctx, r)
	return d.bestEffort(w, StdinSource, result, err)
}

func (d *Detector) bestEffort(w io.Writer, source string, result []TimedChord, err error) []TimedChord {
	if err == nil {
		return result
	}

	d.logger.Warn("Chord detection failed", logging.Fields{
		"source": source,
		"error":  err.Error(),
	})
	fmt.Fprintf(w, "Error processing audio: %v\n", err)
	return []TimedChord{}
}
