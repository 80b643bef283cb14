package markov

import (
	"errors"
	"testing"

	"github.com/variamidi/variamidi/pkg/midifile"
	"github.com/variamidi/variamidi/pkg/variation"
)

func makeDoc(notes []midifile.Note) *midifile.Document {
	return midifile.New(120, 480, notes)
}

func sourceNotes() []midifile.Note {
	return []midifile.Note{
		{Pitch: 60, Start: 0, Duration: 1, Velocity: 100},
		{Pitch: 64, Start: 1, Duration: 0.5, Velocity: 90},
		{Pitch: 67, Start: 1.5, Duration: 0.5, Velocity: 90},
		{Pitch: 72, Start: 2, Duration: 2, Velocity: 110},
	}
}

func pitchesOf(notes []midifile.Note) []uint8 {
	out := make([]uint8, len(notes))
	for i, n := range notes {
		out[i] = n.Pitch
	}
	return out
}

func TestModuleMetadata(t *testing.T) {
	m := New()
	if m.Name() != "markov" {
		t.Errorf("Name() = %q, want markov", m.Name())
	}
	if m.Label() != "Markov Chain (Melody)" {
		t.Errorf("Label() = %q", m.Label())
	}
	if err := m.Ready(); err != nil {
		t.Errorf("Ready() = %v, want nil", err)
	}

	params := m.Parameters()
	if len(params) != 3 {
		t.Fatalf("Parameters() length = %d, want 3", len(params))
	}
	defaults := map[string]float64{"state_size": 2, "length": 0, "seed": 42}
	for _, p := range params {
		want, ok := defaults[p.Name]
		if !ok {
			t.Errorf("unexpected parameter %q", p.Name)
			continue
		}
		if p.Default != want {
			t.Errorf("parameter %q default = %v, want %v", p.Name, p.Default, want)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	m := New()
	doc := makeDoc(sourceNotes())
	params := variation.Params{"state_size": 1, "seed": 42, "length": 16}

	first, err := m.Generate(doc, nil, params)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := m.Generate(doc, nil, params)
	if err != nil {
		t.Fatalf("Generate() second error = %v", err)
	}

	if len(first) != 16 {
		t.Fatalf("Generate() produced %d notes, want 16", len(first))
	}
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("note %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateQuarterMelodyOrderOne(t *testing.T) {
	m := New()
	doc := makeDoc([]midifile.Note{
		{Pitch: 60, Start: 0, Duration: 1, Velocity: 100},
		{Pitch: 64, Start: 1, Duration: 1, Velocity: 100},
		{Pitch: 67, Start: 2, Duration: 1, Velocity: 100},
		{Pitch: 72, Start: 3, Duration: 1, Velocity: 100},
	})
	params := variation.Params{"state_size": 1, "seed": 42, "length": 4}

	first, err := m.Generate(doc, nil, params)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := m.Generate(doc, nil, params)
	if err != nil {
		t.Fatalf("Generate() second error = %v", err)
	}

	if len(first) != 4 {
		t.Fatalf("Generate() produced %d notes, want 4", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("note %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	m := New()
	doc := makeDoc(sourceNotes())

	a, err := m.Generate(doc, nil, variation.Params{"state_size": 4, "seed": 1, "length": 32})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := m.Generate(doc, nil, variation.Params{"state_size": 4, "seed": 2, "length": 32})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	same := true
	for i := range a {
		if a[i].Pitch != b[i].Pitch {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical pitch sequences")
	}
}

func TestGeneratePitchesFromVocabulary(t *testing.T) {
	m := New()
	input := sourceNotes()
	doc := makeDoc(input)

	allowed := make(map[uint8]bool)
	for _, p := range pitchesOf(input) {
		allowed[p] = true
	}

	notes, err := m.Generate(doc, nil, variation.Params{"length": 64, "seed": 7})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for i, n := range notes {
		if !allowed[n.Pitch] {
			t.Errorf("note %d pitch %d not in source vocabulary", i, n.Pitch)
		}
	}
}

func TestGenerateDefaultLengthMatchesInput(t *testing.T) {
	m := New()
	input := sourceNotes()
	doc := makeDoc(input)

	notes, err := m.Generate(doc, nil, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(notes) != len(input) {
		t.Errorf("Generate() produced %d notes, want input length %d", len(notes), len(input))
	}
}

func TestGenerateClampsStateSize(t *testing.T) {
	m := New()
	doc := makeDoc(sourceNotes())

	clamped, err := m.Generate(doc, nil, variation.Params{"state_size": -5, "seed": 9, "length": 12})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	minimum, err := m.Generate(doc, nil, variation.Params{"state_size": 1, "seed": 9, "length": 12})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for i := range clamped {
		if clamped[i].Pitch != minimum[i].Pitch {
			t.Errorf("note %d: clamped state_size diverged from minimum, %d vs %d", i, clamped[i].Pitch, minimum[i].Pitch)
		}
	}
}

func TestGenerateIgnoresUnknownParams(t *testing.T) {
	m := New()
	doc := makeDoc(sourceNotes())

	withBogus, err := m.Generate(doc, nil, variation.Params{"seed": 5, "bogus": 99})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	plain, err := m.Generate(doc, nil, variation.Params{"seed": 5})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for i := range withBogus {
		if withBogus[i] != plain[i] {
			t.Errorf("note %d: unknown parameter changed output", i)
		}
	}
}

func TestGenerateRhythmFollowsSource(t *testing.T) {
	m := New()
	input := sourceNotes()
	doc := makeDoc(input)

	notes, err := m.Generate(doc, nil, variation.Params{"length": 6, "seed": 11})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(notes) != 6 {
		t.Fatalf("Generate() produced %d notes, want 6", len(notes))
	}

	for i := range input {
		if notes[i].Start != input[i].Start {
			t.Errorf("note %d start = %v, want source %v", i, notes[i].Start, input[i].Start)
		}
		if notes[i].Duration != input[i].Duration {
			t.Errorf("note %d duration = %v, want source %v", i, notes[i].Duration, input[i].Duration)
		}
		if notes[i].Velocity != input[i].Velocity {
			t.Errorf("note %d velocity = %v, want source %v", i, notes[i].Velocity, input[i].Velocity)
		}
	}

	lastStart := input[len(input)-1].Start
	for i := len(input); i < len(notes); i++ {
		wantStart := lastStart + float64(i-len(input)+1)
		if notes[i].Start != wantStart {
			t.Errorf("tail note %d start = %v, want %v", i, notes[i].Start, wantStart)
		}
		if notes[i].Duration != 1 {
			t.Errorf("tail note %d duration = %v, want 1", i, notes[i].Duration)
		}
		if notes[i].Velocity != 90 {
			t.Errorf("tail note %d velocity = %d, want 90", i, notes[i].Velocity)
		}
	}
}

func TestGenerateSingleNoteInput(t *testing.T) {
	m := New()
	doc := makeDoc([]midifile.Note{{Pitch: 60, Start: 0, Duration: 1, Velocity: 100}})

	notes, err := m.Generate(doc, nil, variation.Params{"length": 8})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(notes) != 8 {
		t.Fatalf("Generate() produced %d notes, want 8", len(notes))
	}
	for i, n := range notes {
		if n.Pitch != 60 {
			t.Errorf("note %d pitch = %d, want 60", i, n.Pitch)
		}
	}
}

func TestGenerateNoNotes(t *testing.T) {
	m := New()

	if _, err := m.Generate(nil, nil, nil); !errors.Is(err, variation.ErrNoNotes) {
		t.Errorf("Generate(nil) error = %v, want ErrNoNotes", err)
	}

	empty := makeDoc(nil)
	if _, err := m.Generate(empty, nil, nil); !errors.Is(err, variation.ErrNoNotes) {
		t.Errorf("Generate(empty) error = %v, want ErrNoNotes", err)
	}
}
