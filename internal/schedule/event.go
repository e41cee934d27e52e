package schedule

import (
	"fmt"
	"strings"
	"time"
)

// UnspecifiedCategory is the single label for events without a category.
const UnspecifiedCategory = "Other"

// Event is the scheduling view of a calendar event.
type Event struct {
	ID string `json:"id"`
	// Day is the calendar day as epoch milliseconds at midnight.
	Day       int64  `json:"day"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
	Category  string `json:"category"`
	Locked    bool   `json:"locked"`
}

// NormalizeCategory trims c and maps an empty label to UnspecifiedCategory.
func NormalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return UnspecifiedCategory
	}
	return c
}

// Interval parses the event times. Events spanning midnight are rejected.
func (e Event) Interval() (Interval, error) {
	start, err := ToMinutes(e.TimeStart)
	if err != nil {
		return Interval{}, fmt.Errorf("event %s start: %w", e.ID, err)
	}
	end, err := ToMinutes(e.TimeEnd)
	if err != nil {
		return Interval{}, fmt.Errorf("event %s end: %w", e.ID, err)
	}
	if start >= end {
		return Interval{}, fmt.Errorf("event %s %s-%s: %w", e.ID, e.TimeStart, e.TimeEnd, ErrCrossesMidnight)
	}
	return Interval{Start: start, End: end}, nil
}

// Validate checks the event can be handed to the scheduling functions.
func (e Event) Validate() error {
	_, err := e.Interval()
	return err
}

// Weekday returns 0 (Sunday) through 6 (Saturday) for a day given in epoch milliseconds.
func Weekday(dayMillis int64, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return int(time.UnixMilli(dayMillis).In(loc).Weekday())
}

// DayStart truncates t to local midnight and returns it as epoch milliseconds.
func DayStart(t time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).UnixMilli()
}
