package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankSlotsWithoutPattern(t *testing.T) {
	slots := []FreeSlot{
		{TimeStart: "12:00", TimeEnd: "13:00", DurationMinutes: 60},
		{TimeStart: "08:00", TimeEnd: "08:30", DurationMinutes: 30},
		{TimeStart: "09:00", TimeEnd: "11:00", DurationMinutes: 120},
	}
	got, err := RankSlots(slots, nil, 1, 60)
	require.NoError(t, err)
	assert.Equal(t, []Suggestion{
		{TimeStart: "09:00", TimeEnd: "10:00", Score: 1},
		{TimeStart: "12:00", TimeEnd: "13:00", Score: 1},
	}, got)
}

func TestRankSlotsWithPattern(t *testing.T) {
	p := &PatternData{Category: "Work"}
	p.FrequencyByDayOfWeek[1][10] = 5
	p.FrequencyByHour[10] = 8

	slots := []FreeSlot{{TimeStart: "09:00", TimeEnd: "12:00", DurationMinutes: 180}}
	got, err := RankSlots(slots, p, 1, 60)
	require.NoError(t, err)

	assert.Equal(t, []Suggestion{
		{TimeStart: "09:30", TimeEnd: "10:30", Score: 23},
		{TimeStart: "10:00", TimeEnd: "11:00", Score: 23},
		{TimeStart: "10:30", TimeEnd: "11:30", Score: 23},
		{TimeStart: "09:00", TimeEnd: "10:00", Score: 1},
		{TimeStart: "11:00", TimeEnd: "12:00", Score: 1},
	}, got)
}

func TestRankSlotsOtherWeekdayUsesGeneralOnly(t *testing.T) {
	p := &PatternData{}
	p.FrequencyByDayOfWeek[1][10] = 5
	p.FrequencyByHour[10] = 8

	got, err := RankSlots([]FreeSlot{{TimeStart: "10:00", TimeEnd: "11:00", DurationMinutes: 60}}, p, 3, 60)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].Score)
}

func TestRankSlotsOrdering(t *testing.T) {
	p := &PatternData{}
	for h := 0; h < HoursPerDay; h++ {
		p.FrequencyByHour[h] = (h * 7) % 5
		p.FrequencyByDayOfWeek[2][h] = (h * 3) % 4
	}
	slots := []FreeSlot{
		{TimeStart: "08:00", TimeEnd: "10:30", DurationMinutes: 150},
		{TimeStart: "13:15", TimeEnd: "19:00", DurationMinutes: 345},
		{TimeStart: "21:00", TimeEnd: "21:20", DurationMinutes: 20},
	}

	got, err := RankSlots(slots, p, 2, 45)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		require.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
		require.GreaterOrEqual(t, got[i].Score, 1)
	}

	plain, err := RankSlots(slots, nil, 2, 45)
	require.NoError(t, err)
	require.Len(t, plain, 2)
	for i := 1; i < len(plain); i++ {
		require.LessOrEqual(t, plain[i-1].TimeStart, plain[i].TimeStart)
	}
}

func TestRankSlotsTieKeepsGenerationOrder(t *testing.T) {
	slots := []FreeSlot{
		{TimeStart: "14:00", TimeEnd: "15:00", DurationMinutes: 60},
		{TimeStart: "08:00", TimeEnd: "09:00", DurationMinutes: 60},
	}
	got, err := RankSlots(slots, &PatternData{}, 0, 30)
	require.NoError(t, err)
	starts := make([]string, len(got))
	for i, s := range got {
		starts[i] = s.TimeStart
	}
	assert.Equal(t, []string{"14:00", "14:30", "08:00", "08:30"}, starts)
}

func TestRankSlotsErrors(t *testing.T) {
	_, err := RankSlots(nil, nil, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = RankSlots(nil, nil, 7, 30)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = RankSlots([]FreeSlot{{TimeStart: "8", TimeEnd: "09:00"}}, nil, 1, 30)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestMarkRecommended(t *testing.T) {
	s := []Suggestion{{Score: 9}, {Score: 5}, {Score: 2, IsRecommended: true}}
	MarkRecommended(s, 2)
	assert.True(t, s[0].IsRecommended)
	assert.True(t, s[1].IsRecommended)
	assert.False(t, s[2].IsRecommended)
}
