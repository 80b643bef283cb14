// Package harmony extracts a chord timeline from a MIDI document by
// windowed pitch-class analysis
package harmony

// NoChordLabel marks windows where no quality template qualifies.
const NoChordLabel = "N.C."

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// qualityTemplate is one chord quality as intervals above the root.
// The major suffix is empty so a C major triad renders as plain "C".
type qualityTemplate struct {
	suffix    string
	intervals []int
}

var qualityTemplates = []qualityTemplate{
	{suffix: "", intervals: []int{0, 4, 7}},
	{suffix: "m", intervals: []int{0, 3, 7}},
	{suffix: "sus2", intervals: []int{0, 2, 7}},
	{suffix: "sus4", intervals: []int{0, 5, 7}},
	{suffix: "7", intervals: []int{0, 4, 7, 10}},
	{suffix: "maj7", intervals: []int{0, 4, 7, 11}},
	{suffix: "m7", intervals: []int{0, 3, 7, 10}},
}

// chordName renders a root pitch class and quality suffix, e.g. "Am7".
func chordName(root int, suffix string) string {
	return noteNames[root%12] + suffix
}
