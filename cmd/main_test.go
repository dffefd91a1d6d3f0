package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nuray/setpoint/internal/config"
	"github.com/nuray/setpoint/internal/fixtures"
	"github.com/nuray/setpoint/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultLayout(t *testing.T) {
	Convey("Given the default field layout", t, func() {
		fields := defaultFields()
		rules := defaultRules()

		Convey("Then home and away each map onto two slots", func() {
			So(fields, ShouldHaveLength, 2)
			So(fields[0].Attr, ShouldEqual, "home")
			So(fields[0].Slots, ShouldHaveLength, 2)
			So(fields[1].Attr, ShouldEqual, "away")
			So(fields[1].Slots, ShouldHaveLength, 2)
		})

		Convey("Then every slot resolves against the standings pool", func() {
			for _, f := range fields {
				for _, slot := range f.Slots {
					So(slot.Role, ShouldEqual, standingsRole)
				}
			}
		})

		Convey("Then only the lead positions gate completeness", func() {
			required := make([]string, 0, 2)
			for _, r := range rules {
				if r.Required {
					required = append(required, r.Slot)
				}
			}
			So(required, ShouldResemble, []string{"A1", "B1"})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a full generated data set on disk", t, func() {
		So(logger.Init(), ShouldBeNil)
		dir := t.TempDir()
		out := fixtures.Generate(fixtures.Config{
			Matches:        8,
			OddsCoverage:   1.0,
			ResultCoverage: 1.0,
		})
		So(out.WriteFiles(dir), ShouldBeNil)

		cfg := config.New()
		cfg.StorePath = filepath.Join(dir, "tracker.json")
		cfg.SnapshotPath = filepath.Join(dir, fixtures.SnapshotFile)
		cfg.PoolsPath = filepath.Join(dir, fixtures.PoolsFile)
		cfg.FixturesPath = filepath.Join(dir, fixtures.FixturesFile)
		cfg.ResultsPath = filepath.Join(dir, fixtures.ResultsFile)

		Convey("When running the batch pass", func() {
			err := run(context.Background(), logger.Get(), cfg)

			Convey("Then it should persist a store file", func() {
				So(err, ShouldBeNil)
				loaded, lerr := fixtures.LoadSnapshot(cfg.StorePath)
				So(lerr, ShouldBeNil)
				So(loaded, ShouldHaveLength, 8)
			})

			Convey("And a second run should be a no-op merge", func() {
				So(err, ShouldBeNil)
				So(run(context.Background(), logger.Get(), cfg), ShouldBeNil)
			})
		})

		Convey("When the snapshot file is missing", func() {
			cfg.SnapshotPath = filepath.Join(dir, "absent.json")

			Convey("Then the run should fail", func() {
				So(run(context.Background(), logger.Get(), cfg), ShouldNotBeNil)
			})
		})
	})
}
