// Package markov implements the melodic variation module. It learns a
// pitch transition table from the source notes and resamples it into a
// new melody that keeps the rhythmic feel of the input.
package markov

import (
	"math/rand"
	"sort"

	"github.com/variamidi/variamidi/pkg/harmony"
	"github.com/variamidi/variamidi/pkg/midifile"
	"github.com/variamidi/variamidi/pkg/variation"
)

const (
	moduleName  = "markov"
	moduleLabel = "Markov Chain (Melody)"

	tailDuration = 1.0
	tailVelocity = 90
)

// Module generates melodic variations from a Markov chain over the
// source pitch sequence. It is stateless and always ready.
type Module struct{}

// New returns the melodic variation module.
func New() *Module { return &Module{} }

func (m *Module) Name() string  { return moduleName }
func (m *Module) Label() string { return moduleLabel }
func (m *Module) Ready() error  { return nil }

func (m *Module) Parameters() []variation.Parameter {
	return []variation.Parameter{
		{Name: "state_size", Type: variation.TypeInt, Minimum: 1, Maximum: 4, Default: 2},
		{Name: "length", Type: variation.TypeInt, Minimum: 0, Maximum: 128, Default: 0},
		{Name: "seed", Type: variation.TypeInt, Minimum: 0, Maximum: 2147483647, Default: 42},
	}
}

// Generate builds the transition model from the source notes, samples a
// pitch sequence of the requested length and maps it back onto the
// source rhythm. A length of zero matches the source note count.
func (m *Module) Generate(src *midifile.Document, chords []harmony.Chord, params variation.Params) ([]midifile.Note, error) {
	if src == nil {
		return nil, variation.ErrNoNotes
	}
	input := src.AllNotes()
	if len(input) == 0 {
		return nil, variation.ErrNoNotes
	}

	resolved := variation.Resolve(m.Parameters(), params)
	order := resolved.Int("state_size")
	length := resolved.Int("length")
	if length == 0 {
		length = len(input)
	}
	seed := resolved.Int("seed")

	pitches := make([]uint8, len(input))
	for i, n := range input {
		pitches[i] = n.Pitch
	}

	rng := rand.New(rand.NewSource(int64(seed)))
	model := buildModel(pitches, order)
	vocab := observedVocabulary(pitches)
	generated := sample(rng, model, vocab, pitches, order, length)

	return applyRhythm(generated, input), nil
}

// buildModel counts pitch transitions keyed by the preceding state of
// the given order.
func buildModel(pitches []uint8, order int) map[string]map[uint8]int {
	model := make(map[string]map[uint8]int)
	for i := order; i < len(pitches); i++ {
		state := string(pitches[i-order : i])
		next, ok := model[state]
		if !ok {
			next = make(map[uint8]int)
			model[state] = next
		}
		next[pitches[i]]++
	}
	return model
}

// observedVocabulary returns the distinct source pitches in ascending
// order. Sampling falls back to it when a state was never observed.
func observedVocabulary(pitches []uint8) []uint8 {
	seen := make(map[uint8]bool)
	vocab := make([]uint8, 0, len(pitches))
	for _, p := range pitches {
		if !seen[p] {
			seen[p] = true
			vocab = append(vocab, p)
		}
	}
	sort.Slice(vocab, func(i, j int) bool { return vocab[i] < vocab[j] })
	return vocab
}

// sample seeds the chain with the opening of the source sequence and
// walks the model until the requested length is reached.
func sample(rng *rand.Rand, model map[string]map[uint8]int, vocab []uint8, pitches []uint8, order, length int) []uint8 {
	out := make([]uint8, 0, length+order)
	for i := 0; i < order; i++ {
		if i < len(pitches) {
			out = append(out, pitches[i])
		} else {
			out = append(out, pitches[len(pitches)-1])
		}
	}
	for len(out) < length {
		state := string(out[len(out)-order:])
		next, ok := model[state]
		if !ok || len(next) == 0 {
			out = append(out, vocab[rng.Intn(len(vocab))])
			continue
		}
		out = append(out, weightedPick(rng, next))
	}
	if len(out) > length {
		out = out[:length]
	}
	return out
}

// weightedPick draws a pitch with probability proportional to its
// transition count. Candidates are visited in pitch order so the draw
// depends only on the generator state.
func weightedPick(rng *rand.Rand, counts map[uint8]int) uint8 {
	candidates := make([]uint8, 0, len(counts))
	total := 0
	for p, c := range counts {
		candidates = append(candidates, p)
		total += c
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	pick := rng.Intn(total)
	for _, p := range candidates {
		pick -= counts[p]
		if pick < 0 {
			return p
		}
	}
	return candidates[len(candidates)-1]
}

// applyRhythm places generated pitches on the source rhythm. Positions
// past the source length continue on a one beat grid after the last
// source onset.
func applyRhythm(pitches []uint8, input []midifile.Note) []midifile.Note {
	notes := make([]midifile.Note, len(pitches))
	var cursor float64
	for i, p := range pitches {
		if i < len(input) {
			notes[i] = midifile.Note{
				Pitch:    p,
				Start:    input[i].Start,
				Duration: input[i].Duration,
				Velocity: input[i].Velocity,
			}
			cursor = input[i].Start + 1
			continue
		}
		notes[i] = midifile.Note{Pitch: p, Start: cursor, Duration: tailDuration, Velocity: tailVelocity}
		cursor++
	}
	return notes
}
