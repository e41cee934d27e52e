package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"planner-service/internal/schedule"
)

// PatternCache memoises pattern analysis per user, category and day.
// A cached nil means "no history for this category".
type PatternCache interface {
	Get(userID, category string, asOf int64) (*schedule.PatternData, bool)
	Set(userID, category string, asOf int64, p *schedule.PatternData)
	InvalidateUser(userID string)
}

type lruPatternCache struct {
	lru *expirable.LRU[string, *schedule.PatternData]
}

// NewPatternCache returns an LRU cache whose entries expire after ttl.
func NewPatternCache(size int, ttl time.Duration) PatternCache {
	return &lruPatternCache{lru: expirable.NewLRU[string, *schedule.PatternData](size, nil, ttl)}
}

func patternKey(userID, category string, asOf int64) string {
	return fmt.Sprintf("%s\x00%s\x00%d", userID, category, asOf)
}

func (c *lruPatternCache) Get(userID, category string, asOf int64) (*schedule.PatternData, bool) {
	return c.lru.Get(patternKey(userID, category, asOf))
}

func (c *lruPatternCache) Set(userID, category string, asOf int64, p *schedule.PatternData) {
	c.lru.Add(patternKey(userID, category, asOf), p)
}

func (c *lruPatternCache) InvalidateUser(userID string) {
	prefix := userID + "\x00"
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}
