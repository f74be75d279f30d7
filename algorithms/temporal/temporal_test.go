package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleRate = 22050
	hopSize    = 512
)

// pulseEnvelope has unit spikes every period frames starting at first
func pulseEnvelope(n, first, period int) []float64 {
	env := make([]float64, n)
	for i := first; i < n; i += period {
		env[i] = 1
	}
	return env
}

func TestFramesToTime(t *testing.T) {
	assert.Equal(t, 0.0, FramesToTime(0, sampleRate, hopSize))
	assert.InDelta(t, 0.2322, FramesToTime(10, sampleRate, hopSize), 1e-4)
	assert.InDelta(t, 0.4644, FramesToTime(20, sampleRate, hopSize), 1e-4)

	times := FramesToTimes([]int{0, 10, 20}, sampleRate, hopSize)
	require.Len(t, times, 3)
	assert.InDelta(t, 0.2322, times[1], 1e-4)
}

func TestEstimateTempoPulseTrain(t *testing.T) {
	env := pulseEnvelope(400, 10, 20)
	bpm := NewTempoEstimation().EstimateTempo(env, sampleRate, hopSize)

	// 20 frames at 22050/512 frames per second
	assert.InDelta(t, 129.2, bpm, 1.0)
}

func TestEstimateTempoDefaultsWithoutPeriodicity(t *testing.T) {
	te := NewTempoEstimation()
	assert.Equal(t, te.StartBPM, te.EstimateTempo(make([]float64, 400), sampleRate, hopSize))
	assert.Equal(t, te.StartBPM, te.EstimateTempo([]float64{1}, sampleRate, hopSize))
}

func TestTrackBeatsPulseTrain(t *testing.T) {
	env := pulseEnvelope(400, 10, 20)
	bpm := NewTempoEstimation().EstimateTempo(env, sampleRate, hopSize)
	beats := NewBeatTracker().TrackBeats(env, bpm, sampleRate, hopSize)

	require.GreaterOrEqual(t, len(beats), 15)
	for i := 1; i < len(beats); i++ {
		gap := beats[i] - beats[i-1]
		assert.GreaterOrEqual(t, gap, 19)
		assert.LessOrEqual(t, gap, 21)
	}
	for _, b := range beats {
		assert.Less(t, b, len(env))
	}
}

func TestTrackBeatsSilence(t *testing.T) {
	bt := NewBeatTracker()
	assert.Empty(t, bt.TrackBeats(make([]float64, 300), 120, sampleRate, hopSize))
	assert.Empty(t, bt.TrackBeats(nil, 120, sampleRate, hopSize))
	assert.Empty(t, bt.TrackBeats(pulseEnvelope(100, 5, 20), 0, sampleRate, hopSize))
}

func TestOnsetStrengthClickTrack(t *testing.T) {
	signal := make([]float64, 3*sampleRate)
	clickEvery := sampleRate / 2
	for start := clickEvery / 2; start < len(signal); start += clickEvery {
		for i := 0; i < 64 && start+i < len(signal); i++ {
			signal[start+i] = math.Sin(float64(i)) * 0.9
		}
	}

	env, err := NewOnsetDetection(sampleRate).OnsetStrength(signal, hopSize)
	require.NoError(t, err)
	assert.Len(t, env, 1+len(signal)/hopSize)
	assert.Equal(t, 0.0, env[0])
	for _, v := range env {
		assert.GreaterOrEqual(t, v, 0.0)
	}

	peaks := PickPeaks(env, 0.5*maxOf(env), 10)
	assert.GreaterOrEqual(t, len(peaks), 5)
}

func TestOnsetStrengthEmpty(t *testing.T) {
	env, err := NewOnsetDetection(sampleRate).OnsetStrength(nil, hopSize)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestLastBeat(t *testing.T) {
	assert.Equal(t, 6, lastBeat([]float64{0, 5, 1, 2, 1, 6, 7}))
	// The trailing maximum is weaker than half the median maximum
	assert.Equal(t, 3, lastBeat([]float64{0, 10, 0, 10, 0, 1, 0}))
	assert.Equal(t, 0, lastBeat([]float64{4, 3, 2}))
}

func TestPickPeaks(t *testing.T) {
	env := []float64{0, 1, 0, 0.2, 0, 3, 2, 0}
	assert.Equal(t, []int{1, 5}, PickPeaks(env, 0.5, 1))
	assert.Equal(t, []int{1}, PickPeaks(env, 0.5, 5))
	assert.Equal(t, []int{1}, PickPeaks([]float64{1, 2}, 0, 1))
	assert.Equal(t, []int{1, 3}, PickPeaks([]float64{0, 2, 1, 3}, 0, 1))
	assert.Empty(t, PickPeaks([]float64{2}, 0, 1))
	assert.Empty(t, PickPeaks([]float64{3, 2, 2}, 0, 1))
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}
