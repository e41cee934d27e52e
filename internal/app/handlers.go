package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"planner-service/internal/schedule"
	"planner-service/pkg/logger"
)

// POST /users/:id/events
func (a *App) CreateEventHandler(c *gin.Context) {
	userID := c.Param("id")
	var req createEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e := Event{
		UserID:    userID,
		Title:     req.Title,
		Day:       a.dayOf(req.Day),
		TimeStart: req.TimeStart,
		TimeEnd:   req.TimeEnd,
		Category:  schedule.NormalizeCategory(req.Category),
		Locked:    req.Locked,
	}
	if err := e.Schedule().Validate(); err != nil {
		a.fail(c, err)
		return
	}
	if err := a.Store.CreateEvent(c.Request.Context(), &e); err != nil {
		a.fail(c, err)
		return
	}
	a.invalidate(userID)
	c.JSON(http.StatusCreated, e)
}

// GET /users/:id/events?day=MS or ?from=MS&to=MS
func (a *App) ListEventsHandler(c *gin.Context) {
	userID := c.Param("id")
	ctx := c.Request.Context()

	if c.Query("day") != "" {
		day, err := a.dayParam(c, "day")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		events, err := a.Store.ListEventsForDay(ctx, userID, day)
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(events))
		return
	}

	from, err := a.dayParam(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day, or from and to, required (epoch ms)"})
		return
	}
	to, err := a.dayParam(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day, or from and to, required (epoch ms)"})
		return
	}
	if from >= to {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before to"})
		return
	}
	events, err := a.Store.ListEventsInRange(ctx, userID, from, to)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(events))
}

// PATCH /users/:id/events/:event_id
func (a *App) UpdateEventHandler(c *gin.Context) {
	userID := c.Param("id")
	var req updateEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := a.loadEvent(c, userID, c.Param("event_id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Day != nil {
		e.Day = a.dayOf(*req.Day)
	}
	if req.TimeStart != nil {
		e.TimeStart = *req.TimeStart
	}
	if req.TimeEnd != nil {
		e.TimeEnd = *req.TimeEnd
	}
	if req.Category != nil {
		e.Category = schedule.NormalizeCategory(*req.Category)
	}
	if req.Locked != nil {
		e.Locked = *req.Locked
	}
	if err := e.Schedule().Validate(); err != nil {
		a.fail(c, err)
		return
	}

	if err := a.Store.UpdateEvent(c.Request.Context(), &e); err != nil {
		a.fail(c, err)
		return
	}
	a.invalidate(userID)
	c.JSON(http.StatusOK, e)
}

// DELETE /users/:id/events/:event_id
func (a *App) DeleteEventHandler(c *gin.Context) {
	userID := c.Param("id")
	id := c.Param("event_id")
	if _, err := uuid.Parse(id); err != nil {
		a.fail(c, ErrNotFound)
		return
	}
	if err := a.Store.DeleteEvent(c.Request.Context(), userID, id); err != nil {
		a.fail(c, err)
		return
	}
	a.invalidate(userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /users/:id/events/:event_id/move
// Repositions an event and displaces unlocked events that now overlap it.
func (a *App) MoveEventHandler(c *gin.Context) {
	userID := c.Param("id")
	ctx := c.Request.Context()
	var req moveEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := a.loadEvent(c, userID, c.Param("event_id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	if req.Day != nil {
		e.Day = a.dayOf(*req.Day)
	}
	e.TimeStart, e.TimeEnd = req.TimeStart, req.TimeEnd
	if err := e.Schedule().Validate(); err != nil {
		a.fail(c, err)
		return
	}

	dayEvents, err := a.Store.ListEventsForDay(ctx, userID, e.Day)
	if err != nil {
		a.fail(c, err)
		return
	}
	res, err := a.resolve(withEvent(dayEvents, e), e.ID)
	if err != nil {
		a.failResolve(c, err)
		return
	}
	for _, p := range res.Patches {
		if p.ID == e.ID {
			e.TimeStart, e.TimeEnd = p.TimeStart, p.TimeEnd
		}
	}

	if err := a.Store.SaveMove(ctx, &e, res.Patches); err != nil {
		a.fail(c, err)
		return
	}
	a.invalidate(userID)
	a.Log.Info(ctx, "event moved",
		logger.String("user_id", userID),
		logger.String("event_id", e.ID),
		logger.Int("adjusted", res.Adjusted),
		logger.Int("remaining_conflicts", len(res.Conflicts)))

	res.Moved = &e
	c.JSON(http.StatusOK, res)
}

// POST /users/:id/overlaps/resolve
// Dry run of overlap resolution for a day; nothing is persisted. A
// moved_event_id, when given, must be one of the day's events.
func (a *App) ResolveOverlapsHandler(c *gin.Context) {
	userID := c.Param("id")
	var req resolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := a.Store.ListEventsForDay(c.Request.Context(), userID, a.dayOf(req.Day))
	if err != nil {
		a.fail(c, err)
		return
	}
	if req.MovedEventID != "" {
		found := false
		for _, e := range events {
			if e.ID == req.MovedEventID {
				events = withEvent(events, e)
				found = true
				break
			}
		}
		if !found {
			a.fail(c, fmt.Errorf("%w: %s is not on that day", ErrNotFound, req.MovedEventID))
			return
		}
	}
	res, err := a.resolve(events, req.MovedEventID)
	if err != nil {
		a.failResolve(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// resolve runs overlap resolution over one day's events. Earlier entries
// take precedence over later ones.
func (a *App) resolve(events []Event, movedID string) (moveResult, error) {
	sched := toSchedule(events)
	patches, err := schedule.ResolveOverlaps(sched, movedID)
	if err != nil {
		a.Metrics.overlapResolutions.WithLabelValues("failed").Inc()
		return moveResult{}, err
	}
	conflicts := schedule.Conflicts(schedule.ApplyPatches(sched, patches))
	a.Metrics.observeResolution(len(patches), len(conflicts))

	if patches == nil {
		patches = []schedule.Patch{}
	}
	if conflicts == nil {
		conflicts = [][2]string{}
	}
	return moveResult{
		Patches:   patches,
		Adjusted:  len(patches),
		Message:   adjustmentMessage(len(patches), len(conflicts)),
		Conflicts: conflicts,
	}, nil
}

func (a *App) failResolve(c *gin.Context, err error) {
	if errors.Is(err, schedule.ErrOutOfRange) {
		c.JSON(http.StatusConflict, gin.H{"error": "overlapping events cannot be moved past the end of the day: " + err.Error()})
		return
	}
	a.fail(c, err)
}

func adjustmentMessage(adjusted, conflicts int) string {
	var msg string
	switch adjusted {
	case 0:
		msg = "No events needed adjusting."
	case 1:
		msg = "Adjusted 1 event to resolve overlaps."
	default:
		msg = fmt.Sprintf("Adjusted %d events to resolve overlaps.", adjusted)
	}
	if conflicts > 0 {
		msg += fmt.Sprintf(" %d overlap(s) remain and need review.", conflicts)
	}
	return msg
}

// withEvent orders a day for overlap resolution: the moved event first so
// it keeps the slot the user chose, then the rest of the day in start-time
// order as returned by the store. Locked events are still placed ahead of
// all of these by the resolver.
func withEvent(events []Event, e Event) []Event {
	out := make([]Event, 0, len(events)+1)
	out = append(out, e)
	for _, x := range events {
		if x.ID != e.ID {
			out = append(out, x)
		}
	}
	return out
}

func (a *App) loadEvent(c *gin.Context, userID, id string) (Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Event{}, ErrNotFound
	}
	return a.Store.GetEvent(c.Request.Context(), userID, id)
}

// dayParam reads an epoch-millisecond query parameter and truncates it to a day.
func (a *App) dayParam(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("%s required (epoch ms)", name)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return a.dayOf(ms), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
