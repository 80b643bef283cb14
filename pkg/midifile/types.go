// Package midifile parses standard MIDI files into a normalized note-event
// representation and serializes that representation back to MIDI bytes
package midifile

import "sort"

// Note is a single note event. Start and Duration are in beats.
type Note struct {
	Pitch    uint8   // MIDI note number (0-127)
	Start    float64 // Onset in beats from the start of the file
	Duration float64 // Length in beats
	Velocity uint8   // Velocity (0-127)
}

// Track is an ordered run of notes sharing a channel,
// sorted by start time non-decreasing.
type Track struct {
	Channel uint8
	Notes   []Note
}

// Document is the normalized form of a standard MIDI file.
type Document struct {
	Tempo        float64 // Beats per minute
	TicksPerBeat uint16
	Tracks       []Track
}

// New creates a document holding generated notes on a single track.
// Notes are sorted by start time before the track is built.
func New(tempo float64, ticksPerBeat uint16, notes []Note) *Document {
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	if ticksPerBeat == 0 {
		ticksPerBeat = DefaultTicksPerBeat
	}
	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	return &Document{
		Tempo:        tempo,
		TicksPerBeat: ticksPerBeat,
		Tracks:       []Track{{Channel: 0, Notes: sorted}},
	}
}

// AllNotes merges every track into one sequence ordered by start time.
func (d *Document) AllNotes() []Note {
	var merged []Note
	for _, tr := range d.Tracks {
		merged = append(merged, tr.Notes...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start < merged[j].Start
	})
	return merged
}

// NoteCount reports the total number of note events across all tracks.
func (d *Document) NoteCount() int {
	n := 0
	for _, tr := range d.Tracks {
		n += len(tr.Notes)
	}
	return n
}

// SecondsPerBeat converts the document tempo to seconds per beat.
func (d *Document) SecondsPerBeat() float64 {
	tempo := d.Tempo
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	return 60.0 / tempo
}
