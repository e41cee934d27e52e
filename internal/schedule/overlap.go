package schedule

import (
	"fmt"
	"sort"
)

// OverlapBuffer is the gap left after an earlier event when displacing a later one.
const OverlapBuffer = 15

// Patch is a new time range for an event displaced by ResolveOverlaps.
type Patch struct {
	ID        string `json:"id"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
}

type placed struct {
	ev Event
	iv Interval
}

// ResolveOverlaps displaces events so they stop overlapping after movedID
// was repositioned. Locked events go first and never move. The moved event
// keeps its new time unless it lands on a locked event. Every other event is
// compared once against all events ahead of it in order and pushed to
// OverlapBuffer minutes past the end of each one it collides with, keeping
// its duration.
//
// This is a single greedy pass: an event is not re-checked against events
// that were placed before it moved, so the result can still contain
// overlaps when many locked events are packed together. Use Conflicts to
// verify. Only displaced events are returned. A displacement that would
// run past 23:59 fails with ErrOutOfRange.
func ResolveOverlaps(events []Event, movedID string) ([]Patch, error) {
	items := make([]placed, 0, len(events))
	for _, e := range events {
		iv, err := e.Interval()
		if err != nil {
			return nil, err
		}
		items = append(items, placed{ev: e, iv: iv})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ev.Locked && !items[j].ev.Locked })

	var patches []Patch
	for i := range items {
		cur := &items[i]
		if cur.ev.Locked {
			continue
		}
		if cur.ev.ID == movedID && !overlapsLocked(items, cur.iv) {
			continue
		}

		overlapped := false
		for j := 0; j < i; j++ {
			prev := items[j].iv
			if !cur.iv.Overlaps(prev) {
				continue
			}
			d := cur.iv.Duration()
			cur.iv.Start = prev.End + OverlapBuffer
			cur.iv.End = cur.iv.Start + d
			overlapped = true
		}
		if !overlapped {
			continue
		}

		start, err := ToTimeString(cur.iv.Start)
		if err != nil {
			return nil, fmt.Errorf("displace event %s: %w", cur.ev.ID, err)
		}
		end, err := ToTimeString(cur.iv.End)
		if err != nil {
			return nil, fmt.Errorf("displace event %s: %w", cur.ev.ID, err)
		}
		patches = append(patches, Patch{ID: cur.ev.ID, TimeStart: start, TimeEnd: end})
	}
	return patches, nil
}

func overlapsLocked(items []placed, iv Interval) bool {
	for _, it := range items {
		if it.ev.Locked && it.iv.Overlaps(iv) {
			return true
		}
	}
	return false
}

// ApplyPatches returns a copy of events with the patched times applied.
func ApplyPatches(events []Event, patches []Patch) []Event {
	byID := make(map[string]Patch, len(patches))
	for _, p := range patches {
		byID[p.ID] = p
	}
	out := make([]Event, len(events))
	for i, e := range events {
		if p, ok := byID[e.ID]; ok {
			e.TimeStart, e.TimeEnd = p.TimeStart, p.TimeEnd
		}
		out[i] = e
	}
	return out
}

// Conflicts lists every pair of events whose times overlap, by ID.
// Events with unparsable times are ignored.
func Conflicts(events []Event) [][2]string {
	var out [][2]string
	for i := 0; i < len(events); i++ {
		a, err := events[i].Interval()
		if err != nil {
			continue
		}
		for j := i + 1; j < len(events); j++ {
			b, err := events[j].Interval()
			if err != nil {
				continue
			}
			if a.Overlaps(b) {
				out = append(out, [2]string{events[i].ID, events[j].ID})
			}
		}
	}
	return out
}
