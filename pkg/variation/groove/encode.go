package groove

import (
	"math"
	"math/rand"

	"github.com/variamidi/variamidi/pkg/harmony"
	"github.com/variamidi/variamidi/pkg/midifile"
)

const (
	baseNote    = 60
	pitchSpan   = 12
	lowestNote  = 36
	highestNote = 96

	grooveVelocity = 90
	chromaWeight   = 0.5
)

// encodeLatent draws a seeded normal latent vector scaled by
// temperature and biases it with the chord timeline's chroma profile.
func encodeLatent(size, seed int, temperature float64, chords []harmony.Chord) []float32 {
	rng := rand.New(rand.NewSource(int64(seed)))
	chroma := chordChroma(chords)
	latent := make([]float32, size)
	for i := range latent {
		latent[i] = float32(rng.NormFloat64()*temperature + chromaWeight*chroma[i%len(chroma)])
	}
	return latent
}

// chordChroma folds the chord timeline into a zero centered twelve bin
// pitch class profile.
func chordChroma(chords []harmony.Chord) []float64 {
	chroma := make([]float64, 12)
	total := 0
	for _, c := range chords {
		for _, pc := range c.PitchClasses {
			chroma[((pc%12)+12)%12]++
			total++
		}
	}
	if total == 0 {
		return chroma
	}
	mean := float64(total) / 12
	for i := range chroma {
		chroma[i] = (chroma[i] - mean) / float64(total)
	}
	return chroma
}

type decodeOptions struct {
	length      int
	sensitivity float64
}

// decodeNotes maps activations onto a quarter note grid, one step per
// beat. Cells below the sensitivity threshold become rests; the rest
// anchor to the chord active at their step. Activations shorter than
// the requested length cycle.
func decodeNotes(activations []float32, chords []harmony.Chord, opts decodeOptions) []midifile.Note {
	if len(activations) == 0 {
		return nil
	}
	notes := make([]midifile.Note, 0, opts.length)
	for step := 0; step < opts.length; step++ {
		normalized := (math.Tanh(float64(activations[step%len(activations)])) + 1) / 2
		if normalized < opts.sensitivity {
			continue
		}
		pitch := basePitch(chords, step) + int(math.Round(normalized*pitchSpan))
		if pitch < lowestNote {
			pitch = lowestNote
		}
		if pitch > highestNote {
			pitch = highestNote
		}
		notes = append(notes, midifile.Note{
			Pitch:    uint8(pitch),
			Start:    float64(step),
			Duration: 1,
			Velocity: grooveVelocity,
		})
	}
	return notes
}

// basePitch anchors a step to the lowest pitch class of the chord
// active at that step, defaulting to a major triad shape on C.
func basePitch(chords []harmony.Chord, step int) int {
	classes := []int{0, 4, 7}
	if len(chords) > 0 {
		if c := chords[step%len(chords)]; len(c.PitchClasses) > 0 {
			classes = c.PitchClasses
		}
	}
	lowest := ((classes[0] % 12) + 12) % 12
	for _, pc := range classes[1:] {
		pc = ((pc % 12) + 12) % 12
		if pc < lowest {
			lowest = pc
		}
	}
	return baseNote + lowest
}
