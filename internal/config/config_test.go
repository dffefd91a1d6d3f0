package config_test

import (
	"runtime"
	"testing"

	"github.com/nuray/setpoint/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Threshold, convey.ShouldEqual, 85)
			convey.So(cfg.TokenOverlapMin, convey.ShouldEqual, 2)
			convey.So(cfg.TokenMinLength, convey.ShouldEqual, 3)
			convey.So(cfg.TimeWindowMinutes, convey.ShouldEqual, 75)
			convey.So(cfg.Delimiters, convey.ShouldEqual, "/,&")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.BackupRetention, convey.ShouldEqual, 3)
			convey.So(cfg.EnrichStatus, convey.ShouldEqual, "upcoming")
			convey.So(cfg.StorePath, convey.ShouldEqual, "tracker.json")
		})
	})
}
