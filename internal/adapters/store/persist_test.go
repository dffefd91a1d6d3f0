package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nuray/setpoint/internal/adapters/store"
	"github.com/nuray/setpoint/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStorePersistence(t *testing.T) {
	ctx := context.Background()

	Convey("Given a populated store and a state path", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "tracker.json")

		s := store.New()
		_, err := s.Merge(ctx, []model.Record{
			rec("k1", map[string]string{"status": "upcoming", "odds": "1.85"}),
			rec("k2", map[string]string{"status": "inplay"}),
		})
		So(err, ShouldBeNil)

		Convey("When saving and loading", func() {
			So(s.Save(ctx, path), ShouldBeNil)

			restored := store.New()
			So(restored.Load(ctx, path), ShouldBeNil)

			Convey("Then the restored store should match", func() {
				So(restored.Len(ctx), ShouldEqual, 2)

				got, ok := restored.Get(ctx, "k1")
				So(ok, ShouldBeTrue)
				So(got.Attrs["odds"], ShouldEqual, "1.85")
			})
		})

		Convey("When saving over an existing file", func() {
			So(s.Save(ctx, path), ShouldBeNil)
			s.Put(ctx, rec("k3", map[string]string{"status": "upcoming"}))
			So(s.Save(ctx, path), ShouldBeNil)

			Convey("Then a timestamped backup should exist", func() {
				baks, err := filepath.Glob(path + ".*.bak")
				So(err, ShouldBeNil)
				So(len(baks), ShouldEqual, 1)
			})

			Convey("Then no temporary file should be left behind", func() {
				_, err := os.Stat(path + ".tmp")
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When saving with a pile of stale backups", func() {
			s2 := store.New(store.WithBackupRetention(2))
			s2.Put(ctx, rec("k1", map[string]string{"status": "upcoming"}))

			p := filepath.Join(dir, "bounded.json")
			So(s2.Save(ctx, p), ShouldBeNil)
			for _, stamp := range []string{
				"20260101_080000", "20260102_080000", "20260103_080000", "20260104_080000",
			} {
				So(os.WriteFile(p+"."+stamp+".bak", []byte("[]"), 0o644), ShouldBeNil)
			}

			So(s2.Save(ctx, p), ShouldBeNil)

			Convey("Then rotation should keep only the newest backups", func() {
				baks, err := filepath.Glob(p + ".*.bak")
				So(err, ShouldBeNil)
				So(len(baks), ShouldEqual, 2)
			})
		})

		Convey("When loading a missing file", func() {
			fresh := store.New()
			err := fresh.Load(ctx, filepath.Join(dir, "absent.json"))

			Convey("Then it should fail and leave the store empty", func() {
				So(err, ShouldNotBeNil)
				So(fresh.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When loading malformed JSON", func() {
			bad := filepath.Join(dir, "bad.json")
			So(os.WriteFile(bad, []byte("{not json"), 0o644), ShouldBeNil)

			fresh := store.New()
			err := fresh.Load(ctx, bad)

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
