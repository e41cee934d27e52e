// Package schedule holds the scheduling heuristics behind the assistant:
// free slot discovery, historical pattern analysis, slot ranking and
// overlap resolution. Every function is pure and safe for concurrent use.
package schedule

import (
	"fmt"
)

const (
	MinutesPerHour = 60
	HoursPerDay    = 24
	// LastMinute is 23:59 expressed in minutes since midnight.
	LastMinute = HoursPerDay*MinutesPerHour - 1
)

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Duration returns the length of the interval in minutes.
func (i Interval) Duration() int { return i.End - i.Start }

// Overlaps reports whether i and o share at least one minute.
func (i Interval) Overlaps(o Interval) bool {
	return IntervalsOverlap(i.Start, i.End, o.Start, o.End)
}

// ToMinutes parses an "HH:MM" wall-clock string into minutes since midnight.
func ToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	h, ok := twoDigits(s[0], s[1])
	if !ok || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	m, ok := twoDigits(s[3], s[4])
	if !ok || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return h*MinutesPerHour + m, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// ToTimeString formats minutes since midnight as "HH:MM". There is no
// rollover: anything outside 00:00..23:59 is rejected.
func ToTimeString(minutes int) (string, error) {
	if minutes < 0 || minutes > LastMinute {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes/MinutesPerHour, minutes%MinutesPerHour), nil
}

// MustToTimeString is ToTimeString for values known to be in range.
func MustToTimeString(minutes int) string {
	s, err := ToTimeString(minutes)
	if err != nil {
		panic(err)
	}
	return s
}

// IntervalsOverlap uses half-open semantics, so touching endpoints do not overlap.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
