package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
var monday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func dayMillis(offset int) int64 {
	return monday.AddDate(0, 0, offset).UnixMilli()
}

func TestDurationStatsOf(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want DurationStats
	}{
		{name: "outlier trimmed", in: []int{600, 30, 45, 30, 60}, want: DurationStats{MinDuration: 30, MaxDuration: 60}},
		{name: "single value", in: []int{45}, want: DurationStats{MinDuration: 45, MaxDuration: 45}},
		{name: "two values", in: []int{90, 30}, want: DurationStats{MinDuration: 30, MaxDuration: 90}},
		{name: "all equal", in: []int{60, 60, 60}, want: DurationStats{MinDuration: 60, MaxDuration: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DurationStatsOf(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := DurationStatsOf(nil)
	assert.False(t, ok)
}

func TestDurationStatsOfDoesNotMutateInput(t *testing.T) {
	in := []int{90, 30, 60}
	DurationStatsOf(in)
	assert.Equal(t, []int{90, 30, 60}, in)
}

func TestAnalyzePatterns(t *testing.T) {
	history := []Event{
		{ID: "1", Day: dayMillis(0), TimeStart: "09:30", TimeEnd: "10:15", Category: "Work"},
		{ID: "2", Day: dayMillis(0), TimeStart: "10:00", TimeEnd: "11:00", Category: "Work"},
		{ID: "3", Day: dayMillis(1), TimeStart: "14:00", TimeEnd: "15:00", Category: "Work"},
	}

	p, err := AnalyzePatterns(history, time.UTC)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "Work", p.Category)
	assert.Equal(t, 3, p.EventCount)
	assert.InDelta(t, 55.0, p.AverageDurationMinutes, 1e-9)
	assert.Equal(t, DurationStats{MinDuration: 45, MaxDuration: 60}, p.Durations)

	assert.Equal(t, 1, p.FrequencyByHour[9])
	assert.Equal(t, 2, p.FrequencyByHour[10])
	assert.Equal(t, 0, p.FrequencyByHour[11], "an end on the hour does not count the next hour")
	assert.Equal(t, 1, p.FrequencyByHour[14])
	assert.Equal(t, 0, p.FrequencyByHour[15])

	assert.Equal(t, 1, p.FrequencyByDayOfWeek[1][9])
	assert.Equal(t, 2, p.FrequencyByDayOfWeek[1][10])
	assert.Equal(t, 1, p.FrequencyByDayOfWeek[2][14])
	assert.Equal(t, 0, p.FrequencyByDayOfWeek[2][10])
	assert.Equal(t, 55, p.SuggestedDuration())
}

func TestAnalyzePatternsAverageIgnoresTrimming(t *testing.T) {
	history := []Event{
		{Day: dayMillis(0), TimeStart: "09:00", TimeEnd: "09:30"},
		{Day: dayMillis(0), TimeStart: "10:00", TimeEnd: "10:30"},
		{Day: dayMillis(0), TimeStart: "11:00", TimeEnd: "11:30"},
		{Day: dayMillis(0), TimeStart: "12:00", TimeEnd: "12:30"},
		{Day: dayMillis(0), TimeStart: "08:00", TimeEnd: "18:00"},
	}
	p, err := AnalyzePatterns(history, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, UnspecifiedCategory, p.Category)
	assert.Equal(t, DurationStats{MinDuration: 30, MaxDuration: 30}, p.Durations)
	assert.InDelta(t, 144.0, p.AverageDurationMinutes, 1e-9)
}

func TestAnalyzePatternsLateEvening(t *testing.T) {
	p, err := AnalyzePatterns([]Event{{Day: dayMillis(5), TimeStart: "22:30", TimeEnd: "23:59"}}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, p.FrequencyByHour[22])
	assert.Equal(t, 1, p.FrequencyByHour[23])
	assert.Equal(t, 1, p.FrequencyByDayOfWeek[6][23])
}

func TestAnalyzePatternsEmpty(t *testing.T) {
	p, err := AnalyzePatterns(nil, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestAnalyzePatternsInvalid(t *testing.T) {
	_, err := AnalyzePatterns([]Event{{ID: "x", TimeStart: "25:00", TimeEnd: "26:00"}}, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestAnalyzePatternsFrequencyBounds(t *testing.T) {
	var history []Event
	perWeekday := make(map[int]int)
	for i := 0; i < 60; i++ {
		start := 6*60 + (i*37)%(12*60)
		dur := 15 + (i*23)%120
		e := Event{
			Day:       dayMillis(i % 11),
			TimeStart: MustToTimeString(start),
			TimeEnd:   MustToTimeString(start + dur),
		}
		history = append(history, e)
		perWeekday[Weekday(e.Day, time.UTC)]++
	}

	p, err := AnalyzePatterns(history, time.UTC)
	require.NoError(t, err)
	for h := 0; h < HoursPerDay; h++ {
		require.GreaterOrEqual(t, p.FrequencyByHour[h], 0)
		require.LessOrEqual(t, p.FrequencyByHour[h], len(history))
		for d := 0; d < DaysPerWeek; d++ {
			require.GreaterOrEqual(t, p.FrequencyByDayOfWeek[d][h], 0)
			require.LessOrEqual(t, p.FrequencyByDayOfWeek[d][h], perWeekday[d])
		}
	}
}

func TestAnalyzeByCategory(t *testing.T) {
	history := []Event{
		{Day: dayMillis(0), TimeStart: "09:00", TimeEnd: "10:00", Category: "Work"},
		{Day: dayMillis(0), TimeStart: "18:00", TimeEnd: "19:00", Category: "Health & Wellness"},
		{Day: dayMillis(1), TimeStart: "12:00", TimeEnd: "12:30"},
		{Day: dayMillis(2), TimeStart: "09:00", TimeEnd: "11:00", Category: "Work"},
	}
	got, err := AnalyzeByCategory(history, time.UTC)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got["Work"].EventCount)
	assert.Equal(t, 1, got["Health & Wellness"].EventCount)
	assert.Equal(t, 1, got[UnspecifiedCategory].EventCount)
}

func TestWeekdayUsesLocation(t *testing.T) {
	// Monday 00:00 UTC is still Sunday evening in New York.
	ny := time.FixedZone("EST", -5*60*60)
	assert.Equal(t, 1, Weekday(dayMillis(0), time.UTC))
	assert.Equal(t, 0, Weekday(dayMillis(0), ny))
	assert.Equal(t, 1, Weekday(dayMillis(0), nil))
}
