package temporal

import (
	"math"
	"sort"

	"github.com/RyanBlaney/chordscribe/algorithms/windowing"
	"github.com/RyanBlaney/chordscribe/logging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BeatTracker places beats on an onset strength envelope with dynamic
// programming (Ellis 2007): every frame accumulates its local onset score
// plus the best score of a predecessor roughly one beat period earlier,
// penalised by how far that gap strays from the period.
type BeatTracker struct {
	Tightness float64 // Penalty weight on deviations from the beat period
	Trim      bool    // Drop weak leading and trailing beats
	logger    logging.Logger
}

// NewBeatTracker creates a new beat tracker with tightness 100
func NewBeatTracker() *BeatTracker {
	return &BeatTracker{
		Tightness: 100.0,
		Trim:      true,
		logger: logging.WithFields(logging.Fields{
			"component": "beat_tracker",
		}),
	}
}

// TrackBeats returns strictly increasing beat frame indices into envelope.
// An empty or silent envelope yields no beats.
func (bt *BeatTracker) TrackBeats(envelope []float64, bpm float64, sampleRate, hopSize int) []int {
	if len(envelope) == 0 || bpm <= 0 {
		return []int{}
	}
	if floats.Max(envelope) <= 0 {
		return []int{}
	}

	period := framesPerMinute(sampleRate, hopSize) / bpm
	if period < 1 {
		return []int{}
	}

	localScore := bt.localScore(envelope, period)
	backlink, cumScore := bt.dynamicProgram(localScore, period)

	beats := []int{}
	for n := lastBeat(cumScore); n >= 0; n = backlink[n] {
		beats = append(beats, n)
	}
	for i, j := 0, len(beats)-1; i < j; i, j = i+1, j-1 {
		beats[i], beats[j] = beats[j], beats[i]
	}

	if bt.Trim {
		beats = trimBeats(localScore, beats)
	}

	bt.logger.Debug("Beats tracked", logging.Fields{
		"bpm":    bpm,
		"period": period,
		"beats":  len(beats),
	})

	return beats
}

// localScore normalizes the envelope and smooths it with a narrow Gaussian
// whose width scales with the beat period
func (bt *BeatTracker) localScore(envelope []float64, period float64) []float64 {
	norm := make([]float64, len(envelope))
	copy(norm, envelope)
	if std := stat.StdDev(norm, nil); std > 0 {
		floats.Scale(1/std, norm)
	}

	radius := int(math.Round(period))
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		x := float64(i-radius) * 32.0 / period
		kernel[i] = math.Exp(-0.5 * x * x)
	}

	score := make([]float64, len(norm))
	for t := range score {
		sum := 0.0
		for k, w := range kernel {
			j := t + k - radius
			if j >= 0 && j < len(norm) {
				sum += norm[j] * w
			}
		}
		score[t] = sum
	}

	return score
}

// dynamicProgram fills cumulative scores and back-links; a back-link of -1
// marks the first beat of a chain
func (bt *BeatTracker) dynamicProgram(localScore []float64, period float64) ([]int, []float64) {
	windowStart := -int(math.Round(2 * period))
	windowEnd := -int(math.Round(period / 2))

	offsets := make([]int, 0, windowEnd-windowStart+1)
	txCost := make([]float64, 0, windowEnd-windowStart+1)
	for o := windowStart; o <= windowEnd; o++ {
		offsets = append(offsets, o)
		l := math.Log(-float64(o) / period)
		txCost = append(txCost, -bt.Tightness*l*l)
	}

	backlink := make([]int, len(localScore))
	cumScore := make([]float64, len(localScore))
	threshold := 0.01 * floats.Max(localScore)
	firstBeat := true

	for i, score := range localScore {
		best := math.Inf(-1)
		bestFrame := -1

		for k, o := range offsets {
			j := i + o
			candidate := txCost[k]
			if j >= 0 {
				candidate += cumScore[j]
			}
			if candidate > best {
				best = candidate
				if j >= 0 {
					bestFrame = j
				} else {
					bestFrame = -1
				}
			}
		}

		cumScore[i] = score + best

		if firstBeat && score < threshold {
			backlink[i] = -1
		} else {
			backlink[i] = bestFrame
			firstBeat = false
		}
	}

	return backlink, cumScore
}

// lastBeat picks the final local maximum of the cumulative score that clears
// half the median local maximum
func lastBeat(cumScore []float64) int {
	maxima := PickPeaks(cumScore, math.Inf(-1), 1)
	if len(maxima) == 0 {
		return floats.MaxIdx(cumScore)
	}

	peaks := make([]float64, len(maxima))
	for i, m := range maxima {
		peaks[i] = cumScore[m]
	}
	sort.Float64s(peaks)
	median := stat.Quantile(0.5, stat.Empirical, peaks, nil)

	for i := len(maxima) - 1; i >= 0; i-- {
		if 2*cumScore[maxima[i]] > median {
			return maxima[i]
		}
	}

	return floats.MaxIdx(cumScore)
}

// trimBeats removes leading and trailing beats whose local score falls at or
// below half the RMS of the Hann-smoothed beat scores
func trimBeats(localScore []float64, beats []int) []int {
	if len(beats) == 0 {
		return beats
	}

	hann := windowing.NewHann(5, true).GetCoefficients()
	half := len(hann) / 2

	smoothed := make([]float64, len(beats))
	for i := range beats {
		for k, w := range hann {
			j := i + k - half
			if j >= 0 && j < len(beats) {
				smoothed[i] += localScore[beats[j]] * w
			}
		}
	}

	threshold := 0.5 * math.Sqrt(floats.Dot(smoothed, smoothed)/float64(len(smoothed)))

	start := 0
	for start < len(beats) && localScore[beats[start]] <= threshold {
		start++
	}

	end := len(beats)
	for end > start && localScore[beats[end-1]] <= threshold {
		end--
	}

	return beats[start:end]
}
