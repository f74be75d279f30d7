package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RyanBlaney/chordscribe/chords"
	"github.com/RyanBlaney/chordscribe/logging"
	"github.com/spf13/cobra"
)

type options struct {
	chromaMethod string
	ffmpegPath   string
	ffprobePath  string
	logLevel     string
	timeout      time.Duration
	tuning       float64
	strict       bool
}

// newRootCmd builds the CLI. env supplies defaults that flags override.
func newRootCmd(stdout, stderr io.Writer, env map[string]string) *cobra.Command {
	cfg := chords.DefaultConfig()
	opts := &options{
		chromaMethod: cfg.ChromaMethod,
		ffmpegPath:   cfg.Decoder.FFmpegPath,
		ffprobePath:  cfg.Decoder.FFprobePath,
		logLevel:     "warn",
		timeout:      cfg.Decoder.Timeout,
		tuning:       cfg.TuningFreq,
	}
	applyEnv(opts, env)

	cmd := &cobra.Command{
		Use:   "chordscribe <audio_file>",
		Short: "Detect chords in an audio file",
		Long: `chordscribe tracks the beats of a recording and labels every
beat-to-beat segment with the best matching major or minor triad.

Use "-" to read audio from standard input. Put "--" before a file name
that starts with a dash.`,
		Args:         usageOnStderr(cobra.ExactArgs(1)),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return detect(cmd.Context(), args[0], opts, cmd.InOrStdin(), stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.chromaMethod, "chroma", opts.chromaMethod, "chroma method: cqt or stft")
	flags.StringVar(&opts.ffmpegPath, "ffmpeg", opts.ffmpegPath, "path to the ffmpeg binary")
	flags.StringVar(&opts.ffprobePath, "ffprobe", opts.ffprobePath, "path to the ffprobe binary")
	flags.StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level: debug, info, warn or error")
	flags.DurationVar(&opts.timeout, "timeout", opts.timeout, "limit for each ffmpeg/ffprobe run")
	flags.Float64Var(&opts.tuning, "tuning", opts.tuning, "reference frequency of A4 in Hz")
	flags.BoolVar(&opts.strict, "strict", false, "exit with status 1 when the audio cannot be processed")

	return cmd
}

// usageOnStderr prints usage to the error stream when argument validation fails
func usageOnStderr(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
			return err
		}
		return nil
	}
}

func detect(ctx context.Context, path string, opts *options, stdin io.Reader, stdout, stderr io.Writer) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}

	// Logs never share stdout with the report
	useColors := false
	if f, ok := stderr.(*os.File); ok {
		useColors = logging.IsTerminal(f)
	}
	logger := logging.NewDefaultLoggerWithWriters(stderr, stderr, useColors)
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	cfg := chords.DefaultConfig()
	cfg.ChromaMethod = opts.chromaMethod
	cfg.TuningFreq = opts.tuning
	cfg.Decoder.FFmpegPath = opts.ffmpegPath
	cfg.Decoder.FFprobePath = opts.ffprobePath
	cfg.Decoder.Timeout = opts.timeout

	detector, err := chords.NewDetector(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Loading audio file: %s\n", path)

	var result []chords.TimedChord
	switch {
	case opts.strict:
		if err := detector.CheckTools(ctx); err != nil {
			return fmt.Errorf("error processing audio: %w", err)
		}
		if path == chords.StdinSource {
			result, err = detector.DetectReader(ctx, stdin)
		} else {
			result, err = detector.Detect(ctx, path)
		}
		if err != nil {
			return fmt.Errorf("error processing audio: %w", err)
		}
	case path == chords.StdinSource:
		result = detector.DetectReaderBestEffort(ctx, stdin, stdout)
	default:
		result = detector.DetectBestEffort(ctx, path, stdout)
	}

	return chords.WriteReport(stdout, result)
}
