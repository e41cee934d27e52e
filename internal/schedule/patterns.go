package schedule

import (
	"math"
	"sort"
	"time"
)

// DaysPerWeek indexes FrequencyByDayOfWeek, 0 being Sunday.
const DaysPerWeek = 7

// DurationStats are the bounds of a category's durations after IQR outlier removal.
type DurationStats struct {
	MinDuration int `json:"min_duration"`
	MaxDuration int `json:"max_duration"`
}

// PatternData summarises when and for how long a category's events usually happen.
type PatternData struct {
	Category               string                        `json:"category"`
	EventCount             int                           `json:"event_count"`
	AverageDurationMinutes float64                       `json:"average_duration_minutes"`
	Durations              DurationStats                 `json:"durations"`
	FrequencyByHour        [HoursPerDay]int              `json:"frequency_by_hour"`
	FrequencyByDayOfWeek   [DaysPerWeek][HoursPerDay]int `json:"frequency_by_day_of_week"`
}

// SuggestedDuration is the average duration rounded to whole minutes, never below one.
func (p *PatternData) SuggestedDuration() int {
	return max(1, int(math.Round(p.AverageDurationMinutes)))
}

// DurationStatsOf trims outliers with the interquartile range rule and
// returns the min and max of what is left. Quartiles are taken at indices
// n/4 and 3n/4 of the sorted values with no interpolation. The boolean is
// false only for empty input.
func DurationStatsOf(durations []int) (DurationStats, bool) {
	n := len(durations)
	if n == 0 {
		return DurationStats{}, false
	}
	sorted := append([]int(nil), durations...)
	sort.Ints(sorted)

	q1 := float64(sorted[n/4])
	q3 := float64(sorted[(3*n)/4])
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr

	stats := DurationStats{MinDuration: math.MaxInt, MaxDuration: math.MinInt}
	kept := 0
	for _, d := range sorted {
		if float64(d) < lo || float64(d) > hi {
			continue
		}
		kept++
		stats.MinDuration = min(stats.MinDuration, d)
		stats.MaxDuration = max(stats.MaxDuration, d)
	}
	if kept == 0 {
		// Degenerate: fall back to the smallest value.
		return DurationStats{MinDuration: sorted[0], MaxDuration: sorted[0]}, true
	}
	return stats, true
}

// occupiedHours returns the [first, last) hour indices an interval touches.
// An end on the hour does not spill into the next hour.
func occupiedHours(iv Interval) (int, int) {
	startHour := iv.Start / MinutesPerHour
	endHour := iv.End / MinutesPerHour
	if iv.End%MinutesPerHour != 0 {
		endHour++
	}
	return startHour, min(endHour, HoursPerDay)
}

// AnalyzePatterns builds PatternData from the historical events of a single
// category. It returns nil when there is nothing to learn from. The average
// duration is taken over all events, before outlier trimming.
func AnalyzePatterns(events []Event, loc *time.Location) (*PatternData, error) {
	if len(events) == 0 {
		return nil, nil
	}

	p := &PatternData{
		Category:   NormalizeCategory(events[0].Category),
		EventCount: len(events),
	}
	durations := make([]int, 0, len(events))
	total := 0
	for _, e := range events {
		iv, err := e.Interval()
		if err != nil {
			return nil, err
		}
		durations = append(durations, iv.Duration())
		total += iv.Duration()

		dow := Weekday(e.Day, loc)
		first, last := occupiedHours(iv)
		for h := first; h < last; h++ {
			p.FrequencyByHour[h]++
			p.FrequencyByDayOfWeek[dow][h]++
		}
	}
	p.AverageDurationMinutes = float64(total) / float64(len(durations))
	p.Durations, _ = DurationStatsOf(durations)
	return p, nil
}

// AnalyzeByCategory groups events by normalized category and analyzes each group.
func AnalyzeByCategory(events []Event, loc *time.Location) (map[string]*PatternData, error) {
	groups := make(map[string][]Event)
	for _, e := range events {
		c := NormalizeCategory(e.Category)
		groups[c] = append(groups[c], e)
	}
	out := make(map[string]*PatternData, len(groups))
	for c, evs := range groups {
		p, err := AnalyzePatterns(evs, loc)
		if err != nil {
			return nil, err
		}
		out[c] = p
	}
	return out, nil
}
