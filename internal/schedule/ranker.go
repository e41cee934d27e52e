package schedule

import (
	"fmt"
	"sort"
)

const (
	// CandidateStep is the spacing between candidate start times inside a free slot.
	CandidateStep = 30
	// DaySpecificWeight favours the target weekday's history over the all-week aggregate.
	DaySpecificWeight = 3
	GeneralWeight     = 1
)

// Suggestion is a ranked candidate time for a new event.
type Suggestion struct {
	TimeStart     string `json:"time_start"`
	TimeEnd       string `json:"time_end"`
	Score         int    `json:"score"`
	IsRecommended bool   `json:"is_recommended"`
}

// RankSlots turns free slots into scored candidates for an event of the
// given duration on weekday (0 = Sunday). Without pattern data every
// fitting slot yields one candidate at its start, earliest first. With
// pattern data candidates are generated every CandidateStep minutes and
// ordered by descending score; ties keep generation order.
func RankSlots(slots []FreeSlot, pattern *PatternData, weekday, duration int) ([]Suggestion, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, duration)
	}
	if weekday < 0 || weekday >= DaysPerWeek {
		return nil, fmt.Errorf("%w: weekday %d", ErrOutOfRange, weekday)
	}

	type candidate struct {
		start int
		Suggestion
	}
	var cands []candidate
	for _, slot := range slots {
		iv, err := slot.Interval()
		if err != nil {
			return nil, err
		}
		if iv.Duration() < duration {
			continue
		}

		if pattern == nil {
			cands = append(cands, candidate{start: iv.Start, Suggestion: Suggestion{
				TimeStart: MustToTimeString(iv.Start),
				TimeEnd:   MustToTimeString(iv.Start + duration),
				Score:     1,
			}})
			continue
		}

		for start := iv.Start; start+duration <= iv.End; start += CandidateStep {
			cands = append(cands, candidate{start: start, Suggestion: Suggestion{
				TimeStart: MustToTimeString(start),
				TimeEnd:   MustToTimeString(start + duration),
				Score:     scoreCandidate(pattern, weekday, Interval{Start: start, End: start + duration}),
			}})
		}
	}

	if pattern == nil {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].start < cands[j].start })
	} else {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
	}

	out := make([]Suggestion, len(cands))
	for i, c := range cands {
		out[i] = c.Suggestion
	}
	return out, nil
}

func scoreCandidate(p *PatternData, weekday int, iv Interval) int {
	daySpecific, general := 0, 0
	first, last := occupiedHours(iv)
	for h := first; h < last; h++ {
		daySpecific += p.FrequencyByDayOfWeek[weekday][h] * DaySpecificWeight
		general += p.FrequencyByHour[h] * GeneralWeight
	}
	return max(1, daySpecific+general)
}

// MarkRecommended flags the first n suggestions as recommended and clears the rest.
func MarkRecommended(s []Suggestion, n int) {
	for i := range s {
		s[i].IsRecommended = i < n
	}
}
