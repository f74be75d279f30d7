package chords

import "errors"

var (
	ErrInvalidConfig  = errors.New("invalid chord detection configuration")
	ErrEmptyAudio     = errors.New("audio contains no samples")
	ErrInvalidBeats   = errors.New("beat frames must be non-negative and non-decreasing")
	ErrBeatOutOfRange = errors.New("beat frame beyond chromagram")
)
