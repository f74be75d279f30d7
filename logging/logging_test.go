package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warning": WarnLevel,
		" error ": ErrorLevel,
		"fatal":   FatalLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr, false)

	logger.Debug("hidden")
	logger.Info("segment analyzed", Fields{"segment": 3})
	logger.Warn("few beats")
	logger.Error(errors.New("boom"), "decode failed")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "[INFO] segment analyzed map[segment:3]")
	assert.Contains(t, stderr.String(), "[WARN] few beats")
	assert.Contains(t, stderr.String(), "[ERROR] decode failed: boom")
}

func TestWithFieldsSharesLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	parent := NewDefaultLoggerWithWriters(&stdout, &stderr, false)
	child := parent.WithFields(Fields{"component": "beat_tracker"})

	parent.SetLevel(WarnLevel)
	child.Info("dropped")
	child.Warn("kept")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "[WARN] kept map[component:beat_tracker]")
}

func TestWithContextFields(t *testing.T) {
	var stdout bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &bytes.Buffer{}, false)

	ctx := ContextWithFields(context.Background(), Fields{"file": "song.wav"})
	logger.WithContext(ctx).Info("loading")

	assert.Contains(t, stdout.String(), "map[file:song.wav]")
}

func TestFatalUsesExitHook(t *testing.T) {
	var stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&bytes.Buffer{}, &stderr, false)

	code := 0
	logger.exit = func(c int) { code = c }
	logger.Fatal(errors.New("no ffmpeg"), "cannot continue")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "[FATAL] cannot continue: no ffmpeg")
}

func TestColoredWarn(t *testing.T) {
	var stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&bytes.Buffer{}, &stderr, true)

	logger.Warn("tinted")

	assert.Contains(t, stderr.String(), "\x1b[33m")
}

func TestSetGlobalLoggerNil(t *testing.T) {
	previous := GetGlobalLogger()
	defer SetGlobalLogger(previous)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}
