package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"planner-service/internal/config"
	"planner-service/internal/schedule"
	"planner-service/pkg/logger"
)

// googleCategoryKey is the private extended property carrying a planner
// category on Google events.
const googleCategoryKey = "category"

func googleOAuthConfig(cfg *config.Config) *oauth2.Config {
	if !cfg.GoogleEnabled() {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{calendar.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// GoogleAuthHandler starts the OAuth2 flow.
func (a *App) GoogleAuthHandler(c *gin.Context) {
	if a.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Calendar not configured"})
		return
	}
	state := fmt.Sprintf("user_%s_%d", c.Query("user_id"), time.Now().Unix())
	c.JSON(http.StatusOK, gin.H{
		"auth_url": a.Google.AuthCodeURL(state, oauth2.AccessTypeOffline),
		"state":    state,
	})
}

// GoogleOAuth2CallbackHandler exchanges the authorization code for a token.
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	if a.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Calendar not configured"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}

	token, err := a.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		a.Log.Warn(c.Request.Context(), "oauth2 code exchange failed", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}

	// The client keeps the token and sends it back in X-Google-Token.
	tokenJSON, _ := json.Marshal(token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Authorization successful",
		"state":   c.Query("state"),
		"token":   string(tokenJSON),
	})
}

// GET /calendar/calendars
func (a *App) GoogleCalendarListHandler(c *gin.Context) {
	srv, ok := a.calendarService(c)
	if !ok {
		return
	}
	list, err := srv.CalendarList.List().Context(c.Request.Context()).Do()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("failed to retrieve calendars: %v", err)})
		return
	}

	type calendarInfo struct {
		ID         string `json:"id"`
		Summary    string `json:"summary"`
		Primary    bool   `json:"primary"`
		AccessRole string `json:"access_role"`
	}
	out := make([]calendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		out = append(out, calendarInfo{ID: item.Id, Summary: item.Summary, Primary: item.Primary, AccessRole: item.AccessRole})
	}
	c.JSON(http.StatusOK, gin.H{"calendars": out, "count": len(out)})
}

// POST /users/:id/calendar/import?calendar_id=primary&time_min=RFC3339&time_max=RFC3339
// Copies timed Google Calendar events into the planner. Re-importing the
// same event is a no-op.
func (a *App) ImportGoogleCalendarHandler(c *gin.Context) {
	userID := c.Param("id")
	ctx := c.Request.Context()
	srv, ok := a.calendarService(c)
	if !ok {
		return
	}

	calendarID := c.DefaultQuery("calendar_id", "primary")
	call := srv.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Context(ctx)
	if v := c.Query("time_min"); v != "" {
		call = call.TimeMin(v)
	}
	if v := c.Query("time_max"); v != "" {
		call = call.TimeMax(v)
	}

	imported, skipped := 0, 0
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			e, ok := a.fromGoogleEvent(calendarID, item)
			if !ok {
				skipped++
				continue
			}
			e.UserID = userID
			created, err := a.importEvent(ctx, &e)
			if err != nil {
				return err
			}
			if created {
				imported++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		a.Log.Warn(ctx, "google calendar import failed", logger.String("user_id", userID), logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("failed to import events: %v", err)})
		return
	}
	if imported > 0 {
		a.invalidate(userID)
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported, "skipped": skipped})
}

func (a *App) importEvent(ctx context.Context, e *Event) (bool, error) {
	_, err := a.Store.GetEvent(ctx, e.UserID, e.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	return true, a.Store.CreateEvent(ctx, e)
}

// fromGoogleEvent converts a timed, same-day Google event. All-day,
// cancelled and midnight-crossing events are rejected.
func (a *App) fromGoogleEvent(calendarID string, item *calendar.Event) (Event, bool) {
	if item == nil || item.Status == "cancelled" || item.Start == nil || item.End == nil {
		return Event{}, false
	}
	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return Event{}, false
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return Event{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return Event{}, false
	}
	start, end = start.In(a.Location), end.In(a.Location)

	category := ""
	if item.ExtendedProperties != nil {
		category = item.ExtendedProperties.Private[googleCategoryKey]
	}
	e := Event{
		ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte("google:"+calendarID+":"+item.Id)).String(),
		Title:     item.Summary,
		Day:       schedule.DayStart(start, a.Location),
		TimeStart: start.Format("15:04"),
		TimeEnd:   end.Format("15:04"),
		Category:  schedule.NormalizeCategory(category),
	}
	if schedule.DayStart(end, a.Location) != e.Day || e.Schedule().Validate() != nil {
		return Event{}, false
	}
	return e, true
}

// calendarService builds a Calendar client from the X-Google-Token header.
// It writes the error response itself when it returns false.
func (a *App) calendarService(c *gin.Context) (*calendar.Service, bool) {
	if a.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Calendar not configured"})
		return nil, false
	}
	tokenStr := c.GetHeader("X-Google-Token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google token required in X-Google-Token header"})
		return nil, false
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenStr), &token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token format"})
		return nil, false
	}

	ctx := c.Request.Context()
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(a.Google.Client(ctx, &token)))
	if err != nil {
		a.fail(c, fmt.Errorf("create calendar service: %w", err))
		return nil, false
	}
	return srv, true
}
