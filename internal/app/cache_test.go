package app

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"planner-service/internal/schedule"
)

func TestPatternCache(t *testing.T) {
	Convey("Given a pattern cache", t, func() {
		c := NewPatternCache(8, time.Minute)
		p := &schedule.PatternData{Category: "Work", EventCount: 2}

		Convey("Entries are keyed by user, category and day", func() {
			c.Set("u1", "Work", 100, p)
			got, ok := c.Get("u1", "Work", 100)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, p)

			_, ok = c.Get("u1", "Work", 200)
			So(ok, ShouldBeFalse)
			_, ok = c.Get("u2", "Work", 100)
			So(ok, ShouldBeFalse)
		})

		Convey("A cached nil is a hit", func() {
			c.Set("u1", "Reading", 100, nil)
			got, ok := c.Get("u1", "Reading", 100)
			So(ok, ShouldBeTrue)
			So(got, ShouldBeNil)
		})

		Convey("Invalidating a user leaves other users alone", func() {
			c.Set("u1", "Work", 100, p)
			c.Set("u1", "Other", 100, p)
			c.Set("u10", "Work", 100, p)
			c.InvalidateUser("u1")

			_, ok := c.Get("u1", "Work", 100)
			So(ok, ShouldBeFalse)
			_, ok = c.Get("u1", "Other", 100)
			So(ok, ShouldBeFalse)
			_, ok = c.Get("u10", "Work", 100)
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Entries expire after the ttl", t, func() {
		c := NewPatternCache(8, 10*time.Millisecond)
		c.Set("u1", "Work", 100, &schedule.PatternData{})
		time.Sleep(50 * time.Millisecond)
		_, ok := c.Get("u1", "Work", 100)
		So(ok, ShouldBeFalse)
	})
}
