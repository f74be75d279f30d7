package chroma

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ChromaBins is the number of pitch classes in a chroma vector
const ChromaBins = 12

// PitchClassLabels names chroma rows 0..11
var PitchClassLabels = [ChromaBins]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ErrFrameRange is returned when a frame range falls outside the chromagram
var ErrFrameRange = errors.New("frame range outside chromagram")

// Computer produces a chromagram from mono PCM
type Computer interface {
	ComputeChroma(signal []float64, hopSize int) (*Chromagram, error)
	Name() string
}

// Chromagram is a 12 x F matrix of non-negative pitch-class energies.
// Rows are pitch classes C..B, columns are analysis frames.
type Chromagram struct {
	data   *mat.Dense // nil when there are no frames
	frames int
}

// NewChromagram builds a chromagram from per-frame vectors (time x 12)
func NewChromagram(frames [][]float64) (*Chromagram, error) {
	if len(frames) == 0 {
		return &Chromagram{}, nil
	}

	data := mat.NewDense(ChromaBins, len(frames), nil)
	for t, frame := range frames {
		if len(frame) != ChromaBins {
			return nil, fmt.Errorf("frame %d has %d bins, want %d", t, len(frame), ChromaBins)
		}
		for bin, v := range frame {
			if v < 0 {
				return nil, fmt.Errorf("frame %d bin %d is negative: %g", t, bin, v)
			}
		}
		data.SetCol(t, frame)
	}

	return &Chromagram{data: data, frames: len(frames)}, nil
}

// Frames returns the number of analysis frames (columns)
func (c *Chromagram) Frames() int {
	return c.frames
}

// At returns the energy of a pitch class at a frame
func (c *Chromagram) At(bin, frame int) float64 {
	return c.data.At(bin, frame)
}

// Frame returns the chroma vector of a single frame
func (c *Chromagram) Frame(t int) [ChromaBins]float64 {
	var out [ChromaBins]float64
	mat.Col(out[:], t, c.data)
	return out
}

// Matrix exposes the underlying 12 x F matrix. It is nil for an empty chromagram.
func (c *Chromagram) Matrix() mat.Matrix {
	if c.data == nil {
		return nil
	}
	return c.data
}

// MeanOver averages the columns in the half-open range [start, end) for each
// pitch class. An empty range yields the zero vector.
func (c *Chromagram) MeanOver(start, end int) ([ChromaBins]float64, error) {
	var mean [ChromaBins]float64

	if start < 0 || end < start || end > c.frames {
		return mean, fmt.Errorf("%w: [%d, %d) with %d frames", ErrFrameRange, start, end, c.frames)
	}
	if start == end {
		return mean, nil
	}

	segment := c.data.Slice(0, ChromaBins, start, end)
	row := make([]float64, end-start)
	for bin := range ChromaBins {
		mat.Row(row, bin, segment)
		mean[bin] = stat.Mean(row, nil)
	}

	return mean, nil
}

// normalizeMax scales a frame so its largest value is 1. Silent frames are
// left at zero.
func normalizeMax(frame []float64) {
	if len(frame) == 0 {
		return
	}
	peak := floats.Max(frame)
	if peak > 1e-10 {
		floats.Scale(1/peak, frame)
	}
}
