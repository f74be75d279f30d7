package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeJSON = `{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"22050","channels":1,"duration":"1.0"}]}`

func runCLI(args ...string) (int, string, string) {
	return runCLIWithInput("", args...)
}

func runCLIWithInput(input string, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// writeStubTools installs shell stand-ins for ffprobe and ffmpeg that report
// a mono 22050 Hz stream and emit one second of silence
func writeStubTools(t *testing.T, dir string) (ffmpeg, ffprobe string) {
	t.Helper()

	ffprobe = filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(ffprobe, []byte("#!/bin/sh\ncat >/dev/null\necho '"+probeJSON+"'\n"), 0o755))

	ffmpeg = filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(ffmpeg, []byte("#!/bin/sh\ncat >/dev/null\nhead -c 176400 /dev/zero\n"), 0o755))

	return ffmpeg, ffprobe
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{{}, {"a.mp3", "b.mp3"}} {
		code, stdout, stderr := runCLI(args...)
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "Usage:")
		assert.Contains(t, stderr, "chordscribe <audio_file>")
	}
}

func TestMissingFileDegrades(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.mp3")

	code, stdout, _ := runCLI(missing)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Loading audio file: "+missing+"\n")
	assert.Contains(t, stdout, "Error processing audio: ")
	assert.Contains(t, stdout, "No chords detected.\n")
}

func TestMissingFileStrict(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.mp3")

	code, stdout, stderr := runCLI("--strict", missing)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Loading audio file: ")
	assert.NotContains(t, stdout, "No chords detected.")
	assert.Contains(t, stderr, "error processing audio")
	assert.NotContains(t, stderr, "Usage:")
}

func TestInvalidFlags(t *testing.T) {
	code, _, _ := runCLI("--log-level", "verbose", "song.mp3")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI("--chroma", "wavelet", "song.mp3")
	assert.Equal(t, 1, code)
}

func TestSilentAudioWithStubTools(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs need a POSIX shell")
	}

	dir := t.TempDir()
	input := filepath.Join(dir, "silence.wav")
	require.NoError(t, os.WriteFile(input, []byte("RIFF"), 0o644))

	ffmpeg, ffprobe := writeStubTools(t, dir)

	code, stdout, _ := runCLI("--ffmpeg", ffmpeg, "--ffprobe", ffprobe, input)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Loading audio file: "+input+"\nNo chords detected.\n", stdout)
}

func TestStdinWithStubTools(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs need a POSIX shell")
	}

	ffmpeg, ffprobe := writeStubTools(t, t.TempDir())

	for _, strict := range []bool{false, true} {
		args := []string{"--ffmpeg", ffmpeg, "--ffprobe", ffprobe, "-"}
		if strict {
			args = append([]string{"--strict"}, args...)
		}

		code, stdout, _ := runCLIWithInput("RIFF....", args...)
		assert.Equal(t, 0, code)
		assert.Equal(t, "Loading audio file: -\nNo chords detected.\n", stdout)
	}
}

func TestDashPrefixedPathAfterTerminator(t *testing.T) {
	code, stdout, stderr := runCLI("--", "-x.wav")
	assert.Equal(t, 0, code)
	assert.NotContains(t, stderr, "unknown shorthand flag")
	assert.Contains(t, stdout, "Loading audio file: -x.wav\n")
	assert.Contains(t, stdout, "Error processing audio: load -x.wav: ")
}

func TestStrictReportsMissingTools(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "song.wav")
	require.NoError(t, os.WriteFile(input, []byte("RIFF"), 0o644))

	code, stdout, stderr := runCLI("--strict", "--ffmpeg", filepath.Join(dir, "no-ffmpeg"), input)
	assert.Equal(t, 1, code)
	assert.NotContains(t, stdout, "No chords detected.")
	assert.Contains(t, stderr, "audio tool unavailable")
	assert.Contains(t, stderr, "ffmpeg not found")
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CHORDSCRIBE_FFMPEG=/opt/ffmpeg/bin/ffmpeg\nCHORDSCRIBE_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv(envLogLevel, "error")

	env := loadEnv(path)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", env[envFFmpeg])
	assert.Equal(t, "error", env[envLogLevel])

	opts := &options{ffmpegPath: "ffmpeg", ffprobePath: "ffprobe", logLevel: "warn"}
	applyEnv(opts, env)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", opts.ffmpegPath)
	assert.Equal(t, "ffprobe", opts.ffprobePath)
	assert.Equal(t, "error", opts.logLevel)
}

func TestLoadEnvMissingFile(t *testing.T) {
	env := loadEnv(filepath.Join(t.TempDir(), "absent.env"))
	assert.NotNil(t, env)
}
