package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"planner-service/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(logger.InitWriter(&buf, "info"), ShouldBeNil)
		ctx := context.Background()

		Convey("Info records carry the name and fields", func() {
			logger.Named("events").Info(ctx, "created", logger.String("id", "e1"), logger.Int("count", 2))

			var rec map[string]any
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
			So(rec["msg"], ShouldEqual, "created")
			So(rec["logger"], ShouldEqual, "events")
			So(rec["id"], ShouldEqual, "e1")
			So(rec["count"], ShouldEqual, float64(2))
		})

		Convey("Debug is dropped at info level", func() {
			logger.Get().Debug(ctx, "noise")
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("Errors are logged under the error key", func() {
			logger.Get().With(logger.String("user", "u1")).Error(ctx, "failed", logger.Error(errors.New("boom")))
			So(buf.String(), ShouldContainSubstring, `"error":"boom"`)
			So(buf.String(), ShouldContainSubstring, `"user":"u1"`)
		})
	})

	Convey("Unknown levels are rejected", t, func() {
		So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		So(logger.SetLevelString("WARNING"), ShouldBeNil)
		So(logger.SetLevelString("info"), ShouldBeNil)
	})
}
