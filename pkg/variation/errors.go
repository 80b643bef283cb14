package variation

import "errors"

var (
	// ErrNoNotes reports an input document with no usable note events.
	ErrNoNotes = errors.New("input MIDI contains no usable notes")

	// ErrUnknownModule reports a lookup for a name that was never registered.
	ErrUnknownModule = errors.New("unknown variation module")

	// ErrDuplicateModule reports a registration under an already-taken name.
	// The first registration stays in effect.
	ErrDuplicateModule = errors.New("duplicate variation module")
)
