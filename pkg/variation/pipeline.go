package variation

import (
	"fmt"
	"os"

	"github.com/variamidi/variamidi/pkg/harmony"
	"github.com/variamidi/variamidi/pkg/midifile"
)

// Pipeline runs uploads through the full variation flow: parse the source,
// resolve the requested module, generate, and serialize the result into a
// fresh document carrying the source's tempo and resolution.
type Pipeline struct {
	registry *Registry
}

// NewPipeline creates a pipeline over a populated registry.
func NewPipeline(registry *Registry) *Pipeline {
	return &Pipeline{registry: registry}
}

// Registry exposes the underlying registry for listings.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Generate produces variation MIDI bytes from input MIDI bytes. chords may
// be nil, in which case chord-conditioned modules detect their own timeline
// from the input.
func (p *Pipeline) Generate(name string, input []byte, chords []harmony.Chord, params Params) ([]byte, error) {
	module, err := p.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	src, err := midifile.Parse(input)
	if err != nil {
		return nil, err
	}

	notes, err := module.Generate(src, chords, params)
	if err != nil {
		return nil, err
	}

	out := midifile.New(src.Tempo, src.TicksPerBeat, notes)
	data, err := midifile.Serialize(out)
	if err != nil {
		return nil, fmt.Errorf("serializing variation: %w", err)
	}
	return data, nil
}

// AnalyzeChords parses input MIDI bytes and detects their chord timeline.
func (p *Pipeline) AnalyzeChords(input []byte) ([]harmony.Chord, error) {
	doc, err := midifile.Parse(input)
	if err != nil {
		return nil, err
	}
	return harmony.Detect(doc), nil
}

// GenerateFile is the file-path convenience wrapper used by the CLI and the
// terminal UI.
func (p *Pipeline) GenerateFile(name, inputPath, outputPath string, chords []harmony.Chord, params Params) error {
	input, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	output, err := p.Generate(name, input, chords, params)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
