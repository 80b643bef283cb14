package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrMalformed reports MIDI bytes that do not satisfy the SMF container
// structure or use a time format the document model cannot normalize.
var ErrMalformed = errors.New("malformed MIDI data")

const (
	DefaultTempo        = 120.0
	DefaultTicksPerBeat = 480
)

// Parse reads standard MIDI bytes into a Document. Times are normalized to
// beats (ticks divided by the file's metric resolution). The first tempo
// event encountered sets the document tempo; files without one get the
// 120 BPM default. SMPTE-timed files are rejected.
func Parse(data []byte) (*Document, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported time format %v", ErrMalformed, s.TimeFormat)
	}
	ticksPerBeat := mt.Resolution()
	if ticksPerBeat == 0 {
		ticksPerBeat = DefaultTicksPerBeat
	}

	doc := &Document{
		Tempo:        0,
		TicksPerBeat: ticksPerBeat,
	}

	for _, tr := range s.Tracks {
		notes := readTrackNotes(tr, ticksPerBeat, doc)
		for _, chNotes := range notes {
			doc.Tracks = append(doc.Tracks, chNotes)
		}
	}

	if doc.Tempo == 0 {
		doc.Tempo = DefaultTempo
	}
	return doc, nil
}

type openNote struct {
	startTick int64
	velocity  uint8
}

type noteKey struct {
	channel uint8
	pitch   uint8
}

// readTrackNotes walks one SMF track, pairing note starts with note ends
// (FIFO per channel+pitch) and grouping the results by channel. The first
// tempo event seen anywhere in the file is recorded on doc.
func readTrackNotes(tr smf.Track, ticksPerBeat uint16, doc *Document) []Track {
	open := make(map[noteKey][]openNote)
	byChannel := make(map[uint8][]Note)
	var channels []uint8
	var tick int64

	tpb := float64(ticksPerBeat)

	for _, ev := range tr {
		tick += int64(ev.Delta)

		var bpm float64
		if ev.Message.GetMetaTempo(&bpm) {
			if doc.Tempo == 0 && bpm > 0 {
				doc.Tempo = bpm
			}
			continue
		}

		var channel, pitch, velocity uint8
		if ev.Message.GetNoteStart(&channel, &pitch, &velocity) {
			k := noteKey{channel, pitch}
			open[k] = append(open[k], openNote{startTick: tick, velocity: velocity})
			continue
		}
		if ev.Message.GetNoteEnd(&channel, &pitch) {
			k := noteKey{channel, pitch}
			pending := open[k]
			if len(pending) == 0 {
				continue
			}
			started := pending[0]
			open[k] = pending[1:]

			if _, seen := byChannel[channel]; !seen {
				channels = append(channels, channel)
			}
			byChannel[channel] = append(byChannel[channel], Note{
				Pitch:    pitch,
				Start:    float64(started.startTick) / tpb,
				Duration: float64(tick-started.startTick) / tpb,
				Velocity: started.velocity,
			})
		}
	}

	// Close anything left hanging at the end of the track.
	danglingKeys := make([]noteKey, 0, len(open))
	for k := range open {
		danglingKeys = append(danglingKeys, k)
	}
	sort.Slice(danglingKeys, func(i, j int) bool {
		if danglingKeys[i].channel != danglingKeys[j].channel {
			return danglingKeys[i].channel < danglingKeys[j].channel
		}
		return danglingKeys[i].pitch < danglingKeys[j].pitch
	})
	for _, k := range danglingKeys {
		for _, started := range open[k] {
			if tick <= started.startTick {
				continue
			}
			if _, seen := byChannel[k.channel]; !seen {
				channels = append(channels, k.channel)
			}
			byChannel[k.channel] = append(byChannel[k.channel], Note{
				Pitch:    k.pitch,
				Start:    float64(started.startTick) / tpb,
				Duration: float64(tick-started.startTick) / tpb,
				Velocity: started.velocity,
			})
		}
	}

	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })

	tracks := make([]Track, 0, len(channels))
	for _, ch := range channels {
		notes := byChannel[ch]
		sort.SliceStable(notes, func(i, j int) bool { return notes[i].Start < notes[j].Start })
		tracks = append(tracks, Track{Channel: ch, Notes: notes})
	}
	return tracks
}

type timedMessage struct {
	tick int64
	off  bool
	msg  []byte
}

// Serialize writes a Document back to standard MIDI bytes: a leading meta
// track carrying meter and tempo, then one track per document track. Beats
// are scaled to ticks by the document resolution; note-offs sort before
// note-ons at the same tick so adjacent same-pitch notes re-pair cleanly.
// Zero-velocity notes are rests and are not emitted.
func Serialize(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	tempo := doc.Tempo
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	ticksPerBeat := doc.TicksPerBeat
	if ticksPerBeat == 0 {
		ticksPerBeat = DefaultTicksPerBeat
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerBeat)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(0, smf.MetaTempo(tempo))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return nil, fmt.Errorf("failed to add tempo track: %w", err)
	}

	tpb := float64(ticksPerBeat)
	for _, tr := range doc.Tracks {
		events := make([]timedMessage, 0, len(tr.Notes)*2)
		for _, n := range tr.Notes {
			if n.Velocity == 0 {
				continue
			}
			start := int64(math.Round(n.Start * tpb))
			if start < 0 {
				start = 0
			}
			length := int64(math.Round(n.Duration * tpb))
			if length < 1 {
				length = 1
			}
			events = append(events,
				timedMessage{tick: start, msg: midi.NoteOn(tr.Channel, n.Pitch, n.Velocity)},
				timedMessage{tick: start + length, off: true, msg: midi.NoteOff(tr.Channel, n.Pitch)},
			)
		}
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].tick != events[j].tick {
				return events[i].tick < events[j].tick
			}
			return events[i].off && !events[j].off
		})

		var track smf.Track
		var current int64
		for _, ev := range events {
			track.Add(uint32(ev.tick-current), ev.msg)
			current = ev.tick
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}
