// Package config defines the service configuration and how it is loaded.
package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"planner-service/internal/schedule"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `koanf:"database_url"`

	// Timezone is used to turn event days into weekdays.
	Timezone string `koanf:"timezone"`

	// WorkdayStart and WorkdayEnd bound free slot search ("HH:MM").
	WorkdayStart string `koanf:"workday_start"`
	WorkdayEnd   string `koanf:"workday_end"`

	// MinSlotMinutes is the shortest free slot reported.
	MinSlotMinutes int `koanf:"min_slot_minutes"`

	// LookbackDays is how much history feeds pattern analysis.
	LookbackDays int `koanf:"lookback_days"`

	// RecommendedCount is how many top suggestions are flagged as recommended.
	RecommendedCount int `koanf:"recommended_count"`

	PatternCacheSize int           `koanf:"pattern_cache_size"`
	PatternCacheTTL  time.Duration `koanf:"pattern_cache_ttl"`

	// RateLimitRPS and RateLimitBurst throttle the assistant endpoints. Zero disables.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	JWTSecret    string   `koanf:"jwt_secret"`
	StaticTokens []string `koanf:"static_tokens"`

	GoogleClientID     string `koanf:"google_client_id"`
	GoogleClientSecret string `koanf:"google_client_secret"`
	GoogleRedirectURL  string `koanf:"google_redirect_url"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		Timezone:         "UTC",
		WorkdayStart:     "08:00",
		WorkdayEnd:       "20:00",
		MinSlotMinutes:   schedule.DefaultMinSlotMinutes,
		LookbackDays:     90,
		RecommendedCount: 3,
		PatternCacheSize: 1024,
		PatternCacheTTL:  10 * time.Minute,
		RateLimitRPS:     5,
		RateLimitBurst:   10,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Window parses the configured working hours.
func (c *Config) Window() (schedule.Window, error) {
	w, err := schedule.ParseWindow(c.WorkdayStart, c.WorkdayEnd)
	if err != nil {
		return schedule.Window{}, fmt.Errorf("%w: workday: %v", ErrInvalidConfig, err)
	}
	return w, nil
}

// GoogleEnabled reports whether the Google Calendar integration is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Window(); err != nil {
		return err
	}
	if c.MinSlotMinutes <= 0 {
		return fmt.Errorf("%w: min_slot_minutes must be positive", ErrInvalidConfig)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("%w: lookback_days must be positive", ErrInvalidConfig)
	}
	if c.RecommendedCount < 0 {
		return fmt.Errorf("%w: recommended_count must not be negative", ErrInvalidConfig)
	}
	return nil
}
