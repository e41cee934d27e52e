// Package app is the HTTP layer of the planner: event CRUD, the scheduling
// assistant endpoints and the Google Calendar import.
package app

import (
	"time"

	"golang.org/x/oauth2"

	"planner-service/internal/config"
	"planner-service/internal/schedule"
	"planner-service/pkg/logger"
)

// defaultSuggestionMinutes is used when neither the request nor the
// category history provides a duration.
const defaultSuggestionMinutes = 60

type App struct {
	Store   EventStore
	Cache   PatternCache
	Metrics *Metrics
	Log     logger.Logger
	// Google is nil when the calendar integration is not configured.
	Google *oauth2.Config

	Window           schedule.Window
	MinSlotMinutes   int
	LookbackDays     int
	RecommendedCount int
	Location         *time.Location
	Now              func() time.Time
}

// New builds an App from configuration. cache may be nil.
func New(cfg *config.Config, store EventStore, cache PatternCache, m *Metrics, log logger.Logger) (*App, error) {
	w, err := cfg.Window()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &App{
		Store:            store,
		Cache:            cache,
		Metrics:          m,
		Log:              log,
		Google:           googleOAuthConfig(cfg),
		Window:           w,
		MinSlotMinutes:   cfg.MinSlotMinutes,
		LookbackDays:     cfg.LookbackDays,
		RecommendedCount: cfg.RecommendedCount,
		Location:         loc,
		Now:              time.Now,
	}, nil
}

// dayOf truncates an epoch-millisecond timestamp to local midnight.
func (a *App) dayOf(ms int64) int64 {
	return schedule.DayStart(time.UnixMilli(ms), a.Location)
}

func (a *App) today() int64 {
	return schedule.DayStart(a.Now(), a.Location)
}

func (a *App) invalidate(userID string) {
	if a.Cache != nil {
		a.Cache.InvalidateUser(userID)
	}
}
