package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/chordscribe/logging"
	"github.com/tidwall/gjson"
)

var (
	// ErrDecode marks every failure to turn an input file into PCM samples
	ErrDecode = errors.New("audio decode failed")
	// ErrToolUnavailable is returned when ffmpeg or ffprobe cannot be executed
	ErrToolUnavailable = errors.New("audio tool unavailable")
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64      `json:"-"` // Raw mono PCM data
	SampleRate int            `json:"sample_rate"`
	Channels   int            `json:"channels"`
	Duration   time.Duration  `json:"duration"`
	Source     string         `json:"source"`
	Metadata   *AudioMetadata `json:"metadata,omitempty"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	TargetChannels   int           `json:"target_channels"`
	MaxDuration      time.Duration `json:"max_duration"`
	ResampleQuality  string        `json:"resample_quality"` // "fast", "medium", "high"
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"` // Per ffmpeg/ffprobe invocation
}

// DefaultDecoderConfig returns the configuration used for chord analysis:
// mono at 22050 Hz
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 22050,
		TargetChannels:   1,
		MaxDuration:      0, // No limit
		ResampleQuality:  "medium",
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          2 * time.Minute,
	}
}

// Decoder handles audio decoding using FFmpeg
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// AudioMetadata holds detected audio properties from FFprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// DecodeFile probes and decodes an audio file into mono PCM at the target rate
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	if err := d.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDecode, filename)
	}

	logger.Debug("Starting audio file decode")

	metadata, err := d.probeAudioFile(ctx, filename)
	if err != nil {
		logger.Debug("Failed to probe audio file", logging.Fields{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
		"input_bitrate":     metadata.Bitrate,
	})

	args := d.buildFFmpegArgs(metadata)
	args = append([]string{"-i", filename}, args...)
	args = append(args, "pipe:1")

	output, err := d.run(ctx, d.config.FFmpegPath, args, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v", ErrDecode, err)
	}

	return d.processFFmpegOutput(output, metadata, filename)
}

// DecodeReader decodes audio from an io.Reader by piping it through ffmpeg
func (d *Decoder) DecodeReader(ctx context.Context, reader io.Reader) (*AudioData, error) {
	if err := d.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %v", ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty audio data", ErrDecode)
	}

	probeArgs := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		"pipe:0",
	}
	probeOut, err := d.run(ctx, d.config.FFprobePath, probeArgs, data)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe: %v", ErrDecode, err)
	}
	metadata, err := parseFFprobeOutput(probeOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	args := d.buildFFmpegArgs(metadata)
	args = append([]string{"-i", "pipe:0"}, args...)
	args = append(args, "pipe:1")

	output, err := d.run(ctx, d.config.FFmpegPath, args, data)
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v", ErrDecode, err)
	}

	return d.processFFmpegOutput(output, metadata, "pipe:0")
}

// run executes an external tool bounded by the configured timeout and
// returns its stdout
func (d *Decoder) run(ctx context.Context, binary string, args []string, stdin []byte) ([]byte, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	d.logger.Debug("Running external command", logging.Fields{
		"command": fmt.Sprintf("%s %s", binary, strings.Join(args, " ")),
	})

	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) && len(exitError.Stderr) > 0 {
			return nil, fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(string(exitError.Stderr)))
		}
		return nil, err
	}
	return output, nil
}

// probeAudioFile uses ffprobe to get audio information from a file
func (d *Decoder) probeAudioFile(ctx context.Context, filename string) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		filename,
	}

	output, err := d.run(ctx, d.config.FFprobePath, args, nil)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFprobeOutput(output)
}

// parseFFprobeOutput parses ffprobe JSON to extract audio metadata
func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	if !gjson.ValidBytes(jsonData) {
		return nil, fmt.Errorf("failed to parse ffprobe output: invalid JSON")
	}

	streams := gjson.GetBytes(jsonData, "streams").Array()
	if len(streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := streams[0]

	if codecType := stream.Get("codec_type").String(); codecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", codecType)
	}

	// ffprobe reports sample_rate, duration and bit_rate as strings
	sampleRate := int(stream.Get("sample_rate").Int())
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	channels := int(stream.Get("channels").Int())
	if channels <= 0 || channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   channels,
		Codec:      stream.Get("codec_name").String(),
		Duration:   stream.Get("duration").Float(),
		Bitrate:    int(stream.Get("bit_rate").Int()),
		Format:     stream.Get("codec_long_name").String(),
	}, nil
}

// buildFFmpegArgs builds the ffmpeg output arguments based on configuration and metadata
func (d *Decoder) buildFFmpegArgs(metadata *AudioMetadata) []string {
	args := []string{
		"-vn",
		"-f", "f64le",
		"-ac", strconv.Itoa(d.config.TargetChannels),
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
	}

	if d.config.ResampleQuality != "" && metadata.SampleRate != d.config.TargetSampleRate {
		switch d.config.ResampleQuality {
		case "fast":
			args = append(args, "-af", "aresample=resampler=soxr:precision=16")
		case "medium":
			args = append(args, "-af", "aresample=resampler=soxr:precision=20")
		case "high":
			args = append(args, "-af", "aresample=resampler=soxr:precision=28")
		}
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	args = append(args, "-v", "error")

	return args
}

// processFFmpegOutput turns raw f64le output into AudioData
func (d *Decoder) processFFmpegOutput(output []byte, inputMetadata *AudioMetadata, source string) (*AudioData, error) {
	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no audio samples decoded", ErrDecode)
	}

	channels := d.config.TargetChannels
	samplesPerChannel := len(samples) / channels
	duration := time.Duration(samplesPerChannel) * time.Second / time.Duration(d.config.TargetSampleRate)

	d.logger.Debug("FFmpeg decode completed", logging.Fields{
		"source":             source,
		"input_sample_rate":  inputMetadata.SampleRate,
		"input_channels":     inputMetadata.Channels,
		"output_samples":     len(samples),
		"output_sample_rate": d.config.TargetSampleRate,
		"output_duration":    duration.Seconds(),
	})

	return &AudioData{
		PCM:        samples,
		SampleRate: d.config.TargetSampleRate,
		Channels:   channels,
		Duration:   duration,
		Source:     source,
		Metadata:   inputMetadata,
	}, nil
}

// bytesToFloat64 converts raw little-endian float64 bytes to []float64,
// dropping any trailing partial sample
func bytesToFloat64(data []byte) []float64 {
	if len(data)%8 != 0 {
		data = data[:len(data)-(len(data)%8)]
	}

	if len(data) == 0 {
		return nil
	}

	sampleCount := len(data) / 8
	samples := make([]float64, sampleCount)

	for i := range sampleCount {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.TargetSampleRate <= 0 {
		return fmt.Errorf("target sample rate must be positive: %d", d.config.TargetSampleRate)
	}

	if d.config.TargetChannels <= 0 || d.config.TargetChannels > 8 {
		return fmt.Errorf("target channels must be between 1 and 8: %d", d.config.TargetChannels)
	}

	if d.config.FFmpegPath == "" || d.config.FFprobePath == "" {
		return fmt.Errorf("ffmpeg and ffprobe paths must be set")
	}

	return nil
}

// CheckAvailability checks that ffmpeg and ffprobe can be executed
func (d *Decoder) CheckAvailability(ctx context.Context) error {
	if _, err := d.run(ctx, d.config.FFmpegPath, []string{"-version"}, nil); err != nil {
		return fmt.Errorf("%w: ffmpeg not found at %s: %v", ErrToolUnavailable, d.config.FFmpegPath, err)
	}
	if _, err := d.run(ctx, d.config.FFprobePath, []string{"-version"}, nil); err != nil {
		return fmt.Errorf("%w: ffprobe not found at %s: %v", ErrToolUnavailable, d.config.FFprobePath, err)
	}
	return nil
}
