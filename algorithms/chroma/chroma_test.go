package chroma

import (
	"math"
	"testing"

	"github.com/RyanBlaney/chordscribe/algorithms/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRate = 22050

func tone(n int, freqs ...float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		for _, f := range freqs {
			out[i] += math.Sin(2 * math.Pi * f * float64(i) / sampleRate)
		}
	}
	return out
}

func argmax(v [ChromaBins]float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func TestNewChromagramValidates(t *testing.T) {
	_, err := NewChromagram([][]float64{{1, 2, 3}})
	assert.Error(t, err)

	frame := make([]float64, ChromaBins)
	frame[3] = -1
	_, err = NewChromagram([][]float64{frame})
	assert.Error(t, err)

	empty, err := NewChromagram(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Frames())
	assert.Nil(t, empty.Matrix())
}

func TestChromagramLayout(t *testing.T) {
	frames := [][]float64{
		{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	c, err := NewChromagram(frames)
	require.NoError(t, err)

	rows, cols := c.Matrix().Dims()
	assert.Equal(t, ChromaBins, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 2.0, c.At(1, 1))
	assert.Equal(t, 1.0, c.Frame(0)[0])
}

func TestMeanOver(t *testing.T) {
	frames := make([][]float64, 4)
	for i := range frames {
		frames[i] = make([]float64, ChromaBins)
		frames[i][0] = float64(i)
		frames[i][7] = 1
	}
	c, err := NewChromagram(frames)
	require.NoError(t, err)

	mean, err := c.MeanOver(1, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, mean[0], 1e-12)
	assert.InDelta(t, 1.0, mean[7], 1e-12)
	assert.Equal(t, 0.0, mean[4])

	mean, err = c.MeanOver(2, 2)
	require.NoError(t, err)
	assert.Equal(t, [ChromaBins]float64{}, mean)

	mean, err = c.MeanOver(0, 4)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, mean[0], 1e-12)

	_, err = c.MeanOver(3, 5)
	assert.ErrorIs(t, err, ErrFrameRange)
	_, err = c.MeanOver(-1, 2)
	assert.ErrorIs(t, err, ErrFrameRange)
	_, err = c.MeanOver(3, 2)
	assert.ErrorIs(t, err, ErrFrameRange)
}

func TestChromaSTFTPureA(t *testing.T) {
	signal := tone(sampleRate, 440)
	c, err := NewChromaSTFTDefault(sampleRate).ComputeChroma(signal, 512)
	require.NoError(t, err)

	assert.Equal(t, spectral.FrameCount(len(signal), 512), c.Frames())
	mid := c.Frame(c.Frames() / 2)
	assert.Equal(t, 9, argmax(mid))
	assert.InDelta(t, 1.0, mid[9], 1e-12)
}

func TestChromaCQTPureA(t *testing.T) {
	signal := tone(sampleRate, 440)
	cqt := NewChromaCQTDefault(sampleRate)
	c, err := cqt.ComputeChroma(signal, 512)
	require.NoError(t, err)

	assert.Equal(t, spectral.FrameCount(len(signal), 512), c.Frames())
	assert.Equal(t, 9, argmax(c.Frame(c.Frames()/2)))
	assert.Len(t, cqt.GetCQTFrequencies(), 60)
}

func TestChromaCMajorTriad(t *testing.T) {
	signal := tone(sampleRate, 261.63, 329.63, 392.00)

	for _, computer := range []Computer{NewChromaSTFTDefault(sampleRate), NewChromaCQTDefault(sampleRate)} {
		c, err := computer.ComputeChroma(signal, 512)
		require.NoError(t, err, computer.Name())

		mid := c.Frame(c.Frames() / 2)
		for _, chordTone := range []int{0, 4, 7} {
			for bin := range ChromaBins {
				if bin == 0 || bin == 4 || bin == 7 {
					continue
				}
				assert.Greater(t, mid[chordTone], mid[bin], "%s: bin %d vs %d", computer.Name(), chordTone, bin)
			}
		}
	}
}

func TestChromaSilenceIsZero(t *testing.T) {
	signal := make([]float64, 4096)
	c, err := NewChromaCQTDefault(sampleRate).ComputeChroma(signal, 512)
	require.NoError(t, err)

	for frame := range c.Frames() {
		assert.Equal(t, [ChromaBins]float64{}, c.Frame(frame))
	}
}
