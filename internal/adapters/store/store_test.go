package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nuray/setpoint/internal/adapters/store"
	"github.com/nuray/setpoint/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(key string, attrs map[string]string) model.Record {
	return model.Record{Key: key, Attrs: attrs}
}

func TestStoreMerge(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := store.New()

		Convey("When merging a first snapshot", func() {
			delta, err := s.Merge(ctx, []model.Record{
				rec("k1", map[string]string{"status": "upcoming"}),
				rec("k2", map[string]string{"status": "upcoming"}),
			})

			Convey("Then every key should be added", func() {
				So(err, ShouldBeNil)
				So(delta.Added, ShouldResemble, []string{"k1", "k2"})
				So(delta.Updated, ShouldBeEmpty)
				So(delta.Removed, ShouldBeEmpty)
				So(s.Len(ctx), ShouldEqual, 2)
			})

			Convey("And merging the identical snapshot again", func() {
				again, err := s.Merge(ctx, []model.Record{
					rec("k1", map[string]string{"status": "upcoming"}),
					rec("k2", map[string]string{"status": "upcoming"}),
				})

				Convey("Then nothing should change", func() {
					So(err, ShouldBeNil)
					So(again.Empty(), ShouldBeTrue)
				})
			})
		})
	})

	Convey("Given a store with existing state", t, func() {
		s := store.New()
		_, err := s.Merge(ctx, []model.Record{
			rec("k1", map[string]string{"status": "inplay", "odds": "5"}),
		})
		So(err, ShouldBeNil)

		Convey("When a snapshot updates one attribute and omits another", func() {
			delta, err := s.Merge(ctx, []model.Record{
				rec("k1", map[string]string{"status": "upcoming"}),
			})

			Convey("Then the update should preserve the omitted attribute", func() {
				So(err, ShouldBeNil)
				So(delta.Updated, ShouldResemble, []string{"k1"})

				got, ok := s.Get(ctx, "k1")
				So(ok, ShouldBeTrue)
				So(got.Attrs, ShouldResemble, map[string]string{
					"status": "upcoming",
					"odds":   "5",
				})
			})
		})

		Convey("When a snapshot carries an empty attribute value", func() {
			delta, err := s.Merge(ctx, []model.Record{
				rec("k1", map[string]string{"status": "inplay", "odds": ""}),
			})

			Convey("Then the empty value should not clear the stored one", func() {
				So(err, ShouldBeNil)
				So(delta.Empty(), ShouldBeTrue)

				got, _ := s.Get(ctx, "k1")
				So(got.Attrs["odds"], ShouldEqual, "5")
			})
		})

		Convey("When a snapshot no longer contains a stored key", func() {
			delta, err := s.Merge(ctx, []model.Record{
				rec("k2", map[string]string{"status": "upcoming"}),
			})

			Convey("Then the key should be reported removed but retained", func() {
				So(err, ShouldBeNil)
				So(delta.Added, ShouldResemble, []string{"k2"})
				So(delta.Removed, ShouldResemble, []string{"k1"})

				_, ok := s.Get(ctx, "k1")
				So(ok, ShouldBeTrue)
				So(s.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When merging a larger snapshot", func() {
			delta, err := s.Merge(ctx, []model.Record{
				rec("k1", map[string]string{"status": "finished"}),
				rec("k3", map[string]string{"status": "upcoming"}),
				rec("k4", map[string]string{"status": "upcoming"}),
			})
			So(err, ShouldBeNil)

			Convey("Then the delta sets should be pairwise disjoint", func() {
				seen := make(map[string]int)
				for _, k := range delta.Added {
					seen[k]++
				}
				for _, k := range delta.Updated {
					seen[k]++
				}
				for _, k := range delta.Removed {
					seen[k]++
				}
				for _, n := range seen {
					So(n, ShouldEqual, 1)
				}
			})

			Convey("Then every snapshot key should be in the store", func() {
				for _, k := range []string{"k1", "k3", "k4"} {
					_, ok := s.Get(ctx, k)
					So(ok, ShouldBeTrue)
				}
			})
		})
	})
}

func TestStoreValidation(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with one record", t, func() {
		s := store.New()
		_, err := s.Merge(ctx, []model.Record{
			rec("k1", map[string]string{"status": "upcoming"}),
		})
		So(err, ShouldBeNil)

		Convey("When a snapshot row has no key", func() {
			delta, err := s.Merge(ctx, []model.Record{
				rec("k2", map[string]string{"status": "upcoming"}),
				rec("", map[string]string{"status": "upcoming"}),
			})

			Convey("Then the merge should abort naming the row", func() {
				var verr *store.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.MissingKeyRows, ShouldResemble, []int{1})
				So(delta.Empty(), ShouldBeTrue)

				_, ok := s.Get(ctx, "k2")
				So(ok, ShouldBeFalse)
				So(s.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When a snapshot repeats a key", func() {
			_, err := s.Merge(ctx, []model.Record{
				rec("k2", map[string]string{"status": "upcoming"}),
				rec("k2", map[string]string{"status": "inplay"}),
			})

			Convey("Then the merge should abort naming the key", func() {
				var verr *store.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.DuplicateKeys, ShouldResemble, []string{"k2"})
				So(s.Len(ctx), ShouldEqual, 1)
			})
		})
	})
}

func TestStorePurge(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with mixed statuses", t, func() {
		s := store.New()
		_, err := s.Merge(ctx, []model.Record{
			rec("k1", map[string]string{"status": "finished"}),
			rec("k2", map[string]string{"status": "upcoming"}),
			rec("k3", map[string]string{"status": "cancelled"}),
			rec("k4", map[string]string{"status": "finished"}),
		})
		So(err, ShouldBeNil)

		Convey("When purging terminal statuses", func() {
			purged := s.Purge(ctx, "finished", "cancelled")

			Convey("Then only matching records should be dropped", func() {
				So(purged, ShouldResemble, []string{"k1", "k3", "k4"})
				So(s.Len(ctx), ShouldEqual, 1)

				_, ok := s.Get(ctx, "k2")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When purging with no statuses", func() {
			purged := s.Purge(ctx)

			Convey("Then nothing should be dropped", func() {
				So(purged, ShouldBeEmpty)
				So(s.Len(ctx), ShouldEqual, 4)
			})
		})
	})
}

func TestStoreSnapshot(t *testing.T) {
	ctx := context.Background()

	Convey("Given a populated store", t, func() {
		s := store.New()
		_, err := s.Merge(ctx, []model.Record{
			rec("b", map[string]string{"status": "upcoming"}),
			rec("a", map[string]string{"status": "upcoming"}),
			rec("c", map[string]string{"status": "upcoming"}),
		})
		So(err, ShouldBeNil)

		Convey("When taking a snapshot", func() {
			snap := s.Snapshot(ctx)

			Convey("Then it should be key sorted", func() {
				So(snap, ShouldHaveLength, 3)
				So(snap[0].Key, ShouldEqual, "a")
				So(snap[1].Key, ShouldEqual, "b")
				So(snap[2].Key, ShouldEqual, "c")
			})

			Convey("Then mutating the copy should not touch the store", func() {
				snap[0].Set("status", "finished")

				got, _ := s.Get(ctx, "a")
				So(got.Attrs["status"], ShouldEqual, "upcoming")
			})
		})
	})
}
