package harmony

import (
	"math"
	"sort"

	"github.com/variamidi/variamidi/pkg/midifile"
)

// Chord is one entry in a detected chord timeline. Time is in seconds from
// the start of the document. For a matched chord PitchClasses holds the
// template tones rotated to the root; for a no-chord entry it holds whatever
// classes were observed in the window.
type Chord struct {
	Time         float64 `json:"time"`
	Name         string  `json:"name"`
	PitchClasses []int   `json:"pitch_classes"`
}

const scoreEpsilon = 1e-9

// Detect partitions the document's notes into one-beat windows, weights the
// active pitch classes of each window by sounding duration, matches the
// weighted set against the quality templates over all 12 roots, and merges
// adjacent windows that resolve identically. Deterministic and idempotent:
// the same document always yields the same timeline.
func Detect(doc *midifile.Document) []Chord {
	if doc == nil {
		return nil
	}
	notes := doc.AllNotes()
	if len(notes) == 0 {
		return nil
	}

	lastBeat := 0.0
	for _, n := range notes {
		if end := n.Start + n.Duration; end > lastBeat {
			lastBeat = end
		}
	}
	windowCount := int(math.Ceil(lastBeat - 1e-9))
	if windowCount < 1 {
		windowCount = 1
	}

	weights := make([][12]float64, windowCount)
	for _, n := range notes {
		addNoteWeight(weights, n)
	}

	secondsPerBeat := doc.SecondsPerBeat()
	var timeline []Chord
	for w := 0; w < windowCount; w++ {
		name, classes := classifyWindow(weights[w])
		if len(timeline) > 0 {
			last := timeline[len(timeline)-1]
			if last.Name == name && classesEqual(last.PitchClasses, classes) {
				continue
			}
		}
		timeline = append(timeline, Chord{
			Time:         float64(w) * secondsPerBeat,
			Name:         name,
			PitchClasses: classes,
		})
	}
	return timeline
}

// addNoteWeight spreads one note's sounding duration across the beat
// windows it overlaps.
func addNoteWeight(weights [][12]float64, n midifile.Note) {
	class := int(n.Pitch) % 12
	start := n.Start
	end := n.Start + n.Duration
	if end <= 0 {
		return
	}

	first := int(start)
	if first < 0 {
		first = 0
	}
	for w := first; w < len(weights); w++ {
		windowStart := float64(w)
		if windowStart >= end {
			break
		}
		overlap := math.Min(end, windowStart+1) - math.Max(start, windowStart)
		if overlap > 0 {
			weights[w][class] += overlap
		}
	}
}

// classifyWindow names the best-covering chord for one window's weighted
// pitch classes. A template qualifies only when every tone carries weight
// (the minimum-overlap rule); among qualifying candidates the largest
// weighted overlap wins, ties prefer fewer template tones, then the lowest
// root index. Windows with fewer than two classes, or with no qualifying
// template, resolve to the no-chord label over the observed classes.
func classifyWindow(weights [12]float64) (string, []int) {
	observed := make([]int, 0, 12)
	for class, w := range weights {
		if w > 0 {
			observed = append(observed, class)
		}
	}
	if len(observed) < 2 {
		return NoChordLabel, observed
	}

	bestScore := 0.0
	bestRoot := -1
	var bestTemplate qualityTemplate

	for root := 0; root < 12; root++ {
		for _, tpl := range qualityTemplates {
			score, covered := coverage(weights, root, tpl.intervals)
			if !covered {
				continue
			}
			switch {
			case score > bestScore+scoreEpsilon:
			case score > bestScore-scoreEpsilon &&
				bestRoot >= 0 &&
				len(tpl.intervals) < len(bestTemplate.intervals):
			default:
				continue
			}
			bestScore = score
			bestRoot = root
			bestTemplate = tpl
		}
	}

	if bestRoot < 0 {
		return NoChordLabel, observed
	}

	classes := make([]int, 0, len(bestTemplate.intervals))
	for _, iv := range bestTemplate.intervals {
		classes = append(classes, (bestRoot+iv)%12)
	}
	sort.Ints(classes)
	return chordName(bestRoot, bestTemplate.suffix), classes
}

// coverage sums the weight under a template rotated to root, reporting
// whether every template tone is present.
func coverage(weights [12]float64, root int, intervals []int) (float64, bool) {
	total := 0.0
	for _, iv := range intervals {
		w := weights[(root+iv)%12]
		if w <= 0 {
			return 0, false
		}
		total += w
	}
	return total, true
}

func classesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
