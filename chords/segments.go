package chords

import (
	"fmt"

	"github.com/RyanBlaney/chordscribe/algorithms/chroma"
	"github.com/RyanBlaney/chordscribe/algorithms/temporal"
	"github.com/RyanBlaney/chordscribe/algorithms/tonal"
)

// Segment is the chroma mean over frames [StartFrame, EndFrame)
type Segment struct {
	StartFrame int                       `json:"start_frame"`
	EndFrame   int                       `json:"end_frame"`
	Mean       [chroma.ChromaBins]float64 `json:"mean"`
}

// TimedChord is a chord label anchored at the beat that opens its segment
type TimedChord struct {
	Time  float64     `json:"time"` // seconds
	Frame int         `json:"frame"`
	Chord tonal.Chord `json:"chord"`
}

// AggregateSegments averages chroma between consecutive beats. Frames after
// the last beat are not covered. Fewer than two beats give no segments.
func AggregateSegments(c *chroma.Chromagram, beats []int) ([]Segment, error) {
	if len(beats) < 2 {
		return []Segment{}, nil
	}

	frames := 0
	if c != nil {
		frames = c.Frames()
	}

	for i, b := range beats {
		if b < 0 {
			return nil, fmt.Errorf("%w: beat %d at frame %d", ErrInvalidBeats, i, b)
		}
		if b > frames {
			return nil, fmt.Errorf("%w: beat %d at frame %d, chromagram has %d frames", ErrBeatOutOfRange, i, b, frames)
		}
		if i > 0 && b < beats[i-1] {
			return nil, fmt.Errorf("%w: beat %d at frame %d precedes frame %d", ErrInvalidBeats, i, b, beats[i-1])
		}
	}

	segments := make([]Segment, 0, len(beats)-1)
	for i := 0; i < len(beats)-1; i++ {
		segment := Segment{StartFrame: beats[i], EndFrame: beats[i+1]}

		if segment.EndFrame > segment.StartFrame {
			mean, err := c.MeanOver(segment.StartFrame, segment.EndFrame)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			segment.Mean = mean
		}

		segments = append(segments, segment)
	}

	return segments, nil
}

// EstimateChords labels every beat segment, in beat order
func EstimateChords(f *Features) ([]TimedChord, error) {
	if f == nil {
		return []TimedChord{}, nil
	}

	segments, err := AggregateSegments(f.Chroma, f.Beats)
	if err != nil {
		return nil, err
	}

	starts := make([]int, len(segments))
	for i, segment := range segments {
		starts[i] = segment.StartFrame
	}
	times := temporal.FramesToTimes(starts, f.SampleRate, f.HopLength)

	result := make([]TimedChord, len(segments))
	for i, segment := range segments {
		result[i] = TimedChord{
			Time:  times[i],
			Frame: segment.StartFrame,
			Chord: tonal.EstimateChord(segment.Mean),
		}
	}

	return result, nil
}
