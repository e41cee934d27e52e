package app

import (
	"time"

	"planner-service/internal/schedule"
)

// Event is a stored calendar event.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Day       int64     `json:"day"`
	TimeStart string    `json:"time_start"`
	TimeEnd   string    `json:"time_end"`
	Category  string    `json:"category"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Schedule converts the stored event into the form the scheduling
// functions work on. This is where the category sentinel is applied.
func (e Event) Schedule() schedule.Event {
	return schedule.Event{
		ID:        e.ID,
		Day:       e.Day,
		TimeStart: e.TimeStart,
		TimeEnd:   e.TimeEnd,
		Category:  schedule.NormalizeCategory(e.Category),
		Locked:    e.Locked,
	}
}

func toSchedule(events []Event) []schedule.Event {
	out := make([]schedule.Event, len(events))
	for i, e := range events {
		out[i] = e.Schedule()
	}
	return out
}

type createEventReq struct {
	Title     string `json:"title"`
	Day       int64  `json:"day" binding:"required"`
	TimeStart string `json:"time_start" binding:"required"`
	TimeEnd   string `json:"time_end" binding:"required"`
	Category  string `json:"category"`
	Locked    bool   `json:"locked"`
}

type updateEventReq struct {
	Title     *string `json:"title"`
	Day       *int64  `json:"day"`
	TimeStart *string `json:"time_start"`
	TimeEnd   *string `json:"time_end"`
	Category  *string `json:"category"`
	Locked    *bool   `json:"locked"`
}

type moveEventReq struct {
	Day       *int64 `json:"day"`
	TimeStart string `json:"time_start" binding:"required"`
	TimeEnd   string `json:"time_end" binding:"required"`
}

type resolveReq struct {
	Day          int64  `json:"day" binding:"required"`
	MovedEventID string `json:"moved_event_id"`
}

// moveResult is returned by the move and resolve endpoints.
type moveResult struct {
	Moved     *Event           `json:"moved,omitempty"`
	Patches   []schedule.Patch `json:"patches"`
	Adjusted  int              `json:"adjusted"`
	Message   string           `json:"message"`
	Conflicts [][2]string      `json:"remaining_conflicts"`
}
