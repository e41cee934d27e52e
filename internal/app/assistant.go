package app

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"planner-service/internal/schedule"
)

type categorySuggestions struct {
	Category        string                `json:"category"`
	DurationMinutes int                   `json:"duration_minutes"`
	HasPattern      bool                  `json:"has_pattern"`
	Suggestions     []schedule.Suggestion `json:"suggestions"`
}

// GET /users/:id/free-slots?day=MS[&start=HH:MM&end=HH:MM&min=30]
func (a *App) FreeSlotsHandler(c *gin.Context) {
	userID := c.Param("id")
	day, err := a.dayParam(c, "day")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, minDur, err := a.windowParams(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	slots, err := a.freeSlots(c.Request.Context(), userID, day, w, minDur)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"day":   day,
		"slots": slots,
	})
}

// GET /users/:id/patterns?category=X
func (a *App) PatternsHandler(c *gin.Context) {
	userID := c.Param("id")
	category := schedule.NormalizeCategory(c.Query("category"))

	p, err := a.patternFor(c.Request.Context(), userID, category)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category":      category,
		"lookback_days": a.LookbackDays,
		"pattern":       p,
	})
}

// GET /users/:id/suggestions?day=MS&category=A[&category=B][&duration=60]
// Ranks start times inside the day's free slots, one list per category.
func (a *App) SuggestionsHandler(c *gin.Context) {
	userID := c.Param("id")
	ctx := c.Request.Context()

	day, err := a.dayParam(c, "day")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	duration := 0
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
			return
		}
	}
	w, minDur, err := a.windowParams(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	categories := uniqueCategories(c.QueryArray("category"))
	slots, err := a.freeSlots(ctx, userID, day, w, minDur)
	if err != nil {
		a.fail(c, err)
		return
	}
	weekday := schedule.Weekday(day, a.Location)

	results := make([]categorySuggestions, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			p, err := a.patternFor(gctx, userID, category)
			if err != nil {
				return err
			}
			dur := duration
			if dur == 0 {
				dur = defaultSuggestionMinutes
				if p != nil {
					dur = p.SuggestedDuration()
				}
			}
			ranked, err := schedule.RankSlots(slots, p, weekday, dur)
			if err != nil {
				return err
			}
			schedule.MarkRecommended(ranked, a.RecommendedCount)
			a.Metrics.observeSuggestions(len(ranked), p != nil)

			results[i] = categorySuggestions{
				Category:        category,
				DurationMinutes: dur,
				HasPattern:      p != nil,
				Suggestions:     nonNil(ranked),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"day":         day,
		"weekday":     weekday,
		"free_slots":  slots,
		"suggestions": results,
	})
}

func (a *App) freeSlots(ctx context.Context, userID string, day int64, w schedule.Window, minDur int) ([]schedule.FreeSlot, error) {
	events, err := a.Store.ListEventsForDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	slots, err := schedule.FindFreeSlots(toSchedule(events), w, minDur)
	if err != nil {
		return nil, err
	}
	a.Metrics.freeSlotsFound.Add(float64(len(slots)))
	return slots, nil
}

// patternFor analyses the category's history over the lookback window
// ending yesterday. A nil result means there is no history.
func (a *App) patternFor(ctx context.Context, userID, category string) (*schedule.PatternData, error) {
	asOf := a.today()
	if a.Cache != nil {
		if p, ok := a.Cache.Get(userID, category, asOf); ok {
			a.Metrics.patternCache.WithLabelValues("hit").Inc()
			return p, nil
		}
		a.Metrics.patternCache.WithLabelValues("miss").Inc()
	}

	from := schedule.DayStart(time.UnixMilli(asOf).In(a.Location).AddDate(0, 0, -a.LookbackDays), a.Location)
	history, err := a.Store.ListEventsByCategory(ctx, userID, category, from, asOf)
	if err != nil {
		return nil, err
	}
	p, err := schedule.AnalyzePatterns(toSchedule(history), a.Location)
	if err != nil {
		return nil, err
	}
	if a.Cache != nil {
		a.Cache.Set(userID, category, asOf, p)
	}
	return p, nil
}

// windowParams reads optional start, end and min query parameters,
// falling back to the configured working hours.
func (a *App) windowParams(c *gin.Context) (schedule.Window, int, error) {
	w := a.Window
	if start, end := c.Query("start"), c.Query("end"); start != "" || end != "" {
		if start == "" {
			start = schedule.MustToTimeString(a.Window.Start)
		}
		if end == "" {
			end = schedule.MustToTimeString(a.Window.End)
		}
		var err error
		if w, err = schedule.ParseWindow(start, end); err != nil {
			return schedule.Window{}, 0, err
		}
	}
	minDur := a.MinSlotMinutes
	if raw := c.Query("min"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return schedule.Window{}, 0, schedule.ErrInvalidDuration
		}
		minDur = n
	}
	return w, minDur, nil
}

func uniqueCategories(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, r := range raw {
		c := schedule.NormalizeCategory(r)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		out = []string{schedule.UnspecifiedCategory}
	}
	return out
}
