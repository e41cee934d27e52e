package schedule

import (
	"fmt"
	"sort"
)

// DefaultMinSlotMinutes is the shortest free interval FindFreeSlots reports.
const DefaultMinSlotMinutes = 30

// Window is the daily range searched for free time, in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// DefaultWindow covers working hours 08:00-20:00.
var DefaultWindow = Window{Start: 8 * MinutesPerHour, End: 20 * MinutesPerHour}

// ParseWindow builds a Window from two "HH:MM" strings.
func ParseWindow(start, end string) (Window, error) {
	s, err := ToMinutes(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ToMinutes(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	return w, w.validate()
}

func (w Window) validate() error {
	if w.Start < 0 || w.End > LastMinute || w.Start >= w.End {
		return fmt.Errorf("%w: %d-%d", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// FreeSlot is a gap between events inside the working window.
type FreeSlot struct {
	TimeStart       string `json:"time_start"`
	TimeEnd         string `json:"time_end"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Interval returns the slot bounds in minutes.
func (f FreeSlot) Interval() (Interval, error) {
	s, err := ToMinutes(f.TimeStart)
	if err != nil {
		return Interval{}, err
	}
	e, err := ToMinutes(f.TimeEnd)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// FindFreeSlots returns, in chronological order, the gaps of at least
// minDuration minutes that the day's events leave inside w. Overlapping
// events are fine: the cursor only ever moves forward.
func FindFreeSlots(events []Event, w Window, minDuration int) ([]FreeSlot, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if minDuration <= 0 {
		return nil, fmt.Errorf("%w: minimum slot %d", ErrInvalidDuration, minDuration)
	}

	busy := make([]Interval, 0, len(events))
	for _, e := range events {
		iv, err := e.Interval()
		if err != nil {
			return nil, err
		}
		busy = append(busy, iv)
	}
	sort.SliceStable(busy, func(i, j int) bool { return busy[i].Start < busy[j].Start })

	var gaps []Interval
	cursor := w.Start
	for _, b := range busy {
		if b.Start >= w.End {
			break
		}
		if b.Start > cursor {
			gaps = append(gaps, Interval{Start: cursor, End: b.Start})
		}
		cursor = max(cursor, b.End)
	}
	if cursor < w.End {
		gaps = append(gaps, Interval{Start: cursor, End: w.End})
	}

	out := make([]FreeSlot, 0, len(gaps))
	for _, g := range gaps {
		if g.Duration() < minDuration {
			continue
		}
		out = append(out, FreeSlot{
			TimeStart:       MustToTimeString(g.Start),
			TimeEnd:         MustToTimeString(g.End),
			DurationMinutes: g.Duration(),
		})
	}
	return out, nil
}
