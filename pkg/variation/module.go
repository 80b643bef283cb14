// Package variation defines the generator module contract, the registry that
// exposes modules by name, and the pipeline running uploads through them
package variation

import (
	"github.com/variamidi/variamidi/pkg/harmony"
	"github.com/variamidi/variamidi/pkg/midifile"
)

// ParamType is the declared type of a module parameter.
type ParamType string

const (
	TypeInt   ParamType = "int"
	TypeFloat ParamType = "float"
)

// Parameter describes one tunable value a module exposes.
// Default always lies within [Minimum, Maximum].
type Parameter struct {
	Name    string    `json:"name"`
	Type    ParamType `json:"type"`
	Minimum float64   `json:"minimum"`
	Maximum float64   `json:"maximum"`
	Default float64   `json:"default"`
}

// Params maps parameter names to caller-supplied numeric values.
type Params map[string]float64

// Int reads a parameter as an int. Callers resolve params first, so the
// value is already clamped and coerced.
func (p Params) Int(name string) int {
	return int(p[name])
}

// Float reads a parameter as a float64.
func (p Params) Float(name string) float64 {
	return p[name]
}

// Module is the capability contract every variation strategy implements.
// Generate never mutates the source document; it returns a fresh note
// sequence for the caller to wrap and serialize. Implementations resolve
// their parameters internally, so unknown names are ignored, missing names
// take defaults, and out-of-range values are clamped rather than rejected.
type Module interface {
	// Name is the stable identifier the registry and the API key on.
	Name() string
	// Label is the human-readable display name.
	Label() string
	// Ready reports whether the module can generate right now.
	Ready() error
	// Parameters lists the tunable values in display order.
	Parameters() []Parameter
	// Generate produces a variation of src. chords may be nil; modules that
	// condition on harmony fall back to detecting their own timeline.
	Generate(src *midifile.Document, chords []harmony.Chord, params Params) ([]midifile.Note, error)
}

// Descriptor is the immutable listing shape for one registered module.
type Descriptor struct {
	Name       string      `json:"name"`
	Label      string      `json:"label"`
	Ready      bool        `json:"ready"`
	Parameters []Parameter `json:"parameters"`
}
