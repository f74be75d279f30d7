package windowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHannPeriodic(t *testing.T) {
	h := NewHann(4, false)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.5}, h.GetCoefficients(), 1e-12)
}

func TestHannSymmetric(t *testing.T) {
	h := NewHann(5, true)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.5, 0}, h.GetCoefficients(), 1e-12)
}

func TestHannApplyInPlace(t *testing.T) {
	h := NewHann(4, false)
	signal := []float64{2, 2, 2, 2}

	assert.NoError(t, h.ApplyInPlace(signal))
	assert.InDeltaSlice(t, []float64{0, 1, 2, 1}, signal, 1e-12)
	assert.Error(t, h.ApplyInPlace([]float64{1}))
}
