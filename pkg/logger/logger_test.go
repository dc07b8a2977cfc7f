package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cardwatch/pkg/logger"
)

func decodeLines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err == nil {
			out = append(out, rec)
		}
	}
	return out
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf), logger.WithFormat("json")), ShouldBeNil)

		Convey("When logging with typed fields", func() {
			logger.Named("reconciler").Info(ctx, "reconciled player",
				logger.String("player", "Alex Moreno"),
				logger.Int("unserved", 1),
				logger.Bool("compliant", false),
				logger.Error(errors.New("boom")),
			)

			Convey("Then the record carries every field", func() {
				recs := decodeLines(&buf)
				So(recs, ShouldHaveLength, 1)
				So(recs[0]["msg"], ShouldEqual, "reconciled player")
				So(recs[0]["component"], ShouldEqual, "reconciler")
				So(recs[0]["player"], ShouldEqual, "Alex Moreno")
				So(recs[0]["unserved"], ShouldEqual, 1.0)
				So(recs[0]["compliant"], ShouldEqual, false)
				So(recs[0]["error"], ShouldEqual, "boom")
				So(recs[0]["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When debug is below the level", func() {
			logger.Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered", func() {
			So(logger.SetLevelString("DEBUG"), ShouldBeNil)
			logger.Get().Debug(ctx, "visible")
			So(logger.SetLevelString("info"), ShouldBeNil)

			Convey("Then debug records appear", func() {
				So(decodeLines(&buf), ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given an unknown format", t, func() {
		So(logger.Init(logger.WithFormat("xml")), ShouldNotBeNil)
	})

	Convey("Given an unknown level", t, func() {
		err := logger.SetLevelString("verbose")
		So(errors.Is(err, logger.ErrUnknownLevel), ShouldBeTrue)
	})
}

func TestStandaloneLoggers(t *testing.T) {
	ctx := context.Background()

	Convey("Given a standalone logger", t, func() {
		var buf bytes.Buffer
		l := logger.New(&buf, slog.LevelWarn)
		l.Info(ctx, "skipped")
		l.Warn(ctx, "kept", logger.Float64("score", 4.5))

		Convey("Then it honours its own level", func() {
			recs := decodeLines(&buf)
			So(recs, ShouldHaveLength, 1)
			So(recs[0]["score"], ShouldEqual, 4.5)
		})
	})

	Convey("Given the nop logger", t, func() {
		So(func() { logger.Nop().Named("x").Error(ctx, "dropped") }, ShouldNotPanic)
	})
}
