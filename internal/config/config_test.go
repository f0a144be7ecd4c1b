package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/okian/refxpp/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.BeatmapDir, convey.ShouldBeEmpty)
			convey.So(cfg.MaxBeatmapBytes, convey.ShouldEqual, 8<<20)
			convey.So(cfg.AccuracyScale, convey.ShouldEqual, "percent")
			convey.So(cfg.BatchConcurrency, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 100)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "refxpp")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
