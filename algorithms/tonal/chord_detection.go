package tonal

import (
	"math"

	"github.com/RyanBlaney/chordscribe/algorithms/chroma"
	"gonum.org/v1/gonum/floats"
)

// ChordQuality represents the quality/type of a chord
type ChordQuality int

const (
	ChordMajor ChordQuality = iota
	ChordMinor
)

// PitchClassNames are the root names indexed by pitch class, C = 0
var PitchClassNames = chroma.PitchClassLabels

// Chord templates in root position, C = index 0
var (
	MajorTemplate = [12]float64{1, 0, 0, 0, 1, 0, 0, 1, 0, 0, 0, 0}
	MinorTemplate = [12]float64{1, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 0}
)

// Chord is a root pitch class and a triad quality
type Chord struct {
	Root    int          `json:"root"`
	Quality ChordQuality `json:"quality"`
}

// String renders the chord label: root name, with an "m" suffix for minor
func (c Chord) String() string {
	name := PitchClassNames[((c.Root%12)+12)%12]
	if c.Quality == ChordMinor {
		name += "m"
	}
	return name
}

// GetChordQualityName returns the human-readable name for a chord quality
func GetChordQualityName(quality ChordQuality) string {
	switch quality {
	case ChordMajor:
		return "major"
	case ChordMinor:
		return "minor"
	default:
		return "unknown"
	}
}

// TemplateMatch holds the best root and score found for each quality
type TemplateMatch struct {
	MajorRoot  int     `json:"major_root"`
	MajorScore float64 `json:"major_score"`
	MinorRoot  int     `json:"minor_root"`
	MinorScore float64 `json:"minor_score"`
}

// Chord resolves the match; major wins only when strictly better
func (m TemplateMatch) Chord() Chord {
	if m.MajorScore > m.MinorScore {
		return Chord{Root: m.MajorRoot, Quality: ChordMajor}
	}
	return Chord{Root: m.MinorRoot, Quality: ChordMinor}
}

// RotateTemplate shifts a template cyclically right by semitones, so the
// root-position entry moves to index semitones
func RotateTemplate(template [12]float64, semitones int) [12]float64 {
	var result [12]float64
	shift := ((semitones % 12) + 12) % 12
	for i, val := range template {
		result[(i+shift)%12] = val
	}
	return result
}

// TemplateScore is the dot product of a chroma vector and a template
func TemplateScore(profile, template [12]float64) float64 {
	return floats.Dot(profile[:], template[:])
}

// MatchTemplates scans all 12 rotations of the major and minor templates
func MatchTemplates(profile [12]float64) TemplateMatch {
	majorRoot, majorScore := bestRoot(profile, MajorTemplate)
	minorRoot, minorScore := bestRoot(profile, MinorTemplate)

	return TemplateMatch{
		MajorRoot:  majorRoot,
		MajorScore: majorScore,
		MinorRoot:  minorRoot,
		MinorScore: minorScore,
	}
}

// EstimateChord labels a chroma vector with the best matching triad
func EstimateChord(profile [12]float64) Chord {
	return MatchTemplates(profile).Chord()
}

// bestRoot keeps the first root reaching the maximum score
func bestRoot(profile, template [12]float64) (int, float64) {
	root := 0
	best := math.Inf(-1)

	for r := range 12 {
		score := TemplateScore(profile, RotateTemplate(template, r))
		if score > best {
			best = score
			root = r
		}
	}

	return root, best
}
