package chords

import (
	"fmt"
	"io"
)

// WriteReport prints detected chords one per line with the segment start
// time to two decimals, or a notice when the list is empty
func WriteReport(w io.Writer, result []TimedChord) error {
	if len(result) == 0 {
		_, err := fmt.Fprintln(w, "No chords detected.")
		return err
	}

	if _, err := fmt.Fprintln(w, "\nDetected Chords:"); err != nil {
		return err
	}
	for _, tc := range result {
		if _, err := fmt.Fprintf(w, "Time: %.2fs - Chord: %s\n", tc.Time, tc.Chord); err != nil {
			return err
		}
	}

	return nil
}
