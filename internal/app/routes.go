package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterOptions configures Router.
type RouterOptions struct {
	// Auth guards /api; nil leaves the API open.
	Auth           gin.HandlerFunc
	RateLimitRPS   float64
	RateLimitBurst int
}

// Router registers all routes on a new gin engine.
func (a *App) Router(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), a.requestLogger())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	// OAuth2 callback (must be outside the auth middleware)
	router.GET("/oauth2callback", a.GoogleOAuth2CallbackHandler)

	api := router.Group("/api")
	if opts.Auth != nil {
		api.Use(opts.Auth)
	}
	limited := rateLimit(opts.RateLimitRPS, opts.RateLimitBurst)
	{
		users := api.Group("/users/:id")
		{
			users.POST("/events", a.CreateEventHandler)
			users.GET("/events", a.ListEventsHandler)
			users.PATCH("/events/:event_id", a.UpdateEventHandler)
			users.DELETE("/events/:event_id", a.DeleteEventHandler)
			users.POST("/events/:event_id/move", limited, a.MoveEventHandler)

			users.GET("/free-slots", a.FreeSlotsHandler)
			users.GET("/patterns", a.PatternsHandler)
			users.GET("/suggestions", limited, a.SuggestionsHandler)
			users.POST("/overlaps/resolve", limited, a.ResolveOverlapsHandler)

			users.POST("/calendar/import", a.ImportGoogleCalendarHandler)
		}

		calendar := api.Group("/calendar")
		{
			calendar.GET("/auth", a.GoogleAuthHandler)
			calendar.GET("/calendars", a.GoogleCalendarListHandler)
		}
	}
	return router
}
