package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nuray/setpoint/internal/adapters/pipeline"
	"github.com/nuray/setpoint/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory queue", t, func() {
		Convey("When enqueuing within capacity", func() {
			q := pipeline.NewInMemoryQueue(pipeline.WithCapacity(10), pipeline.WithBufferSize(10))

			ok := q.Enqueue(ctx, model.Record{Key: "k1"})

			Convey("Then the record should be accepted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the queue is full", func() {
			q := pipeline.NewInMemoryQueue(pipeline.WithCapacity(1), pipeline.WithBufferSize(1))

			So(q.Enqueue(ctx, model.Record{Key: "k1"}), ShouldBeTrue)
			ok := q.Enqueue(ctx, model.Record{Key: "k2"})

			Convey("Then further enqueues should be rejected", func() {
				So(ok, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the queue is closed", func() {
			q := pipeline.NewInMemoryQueue()
			So(q.Enqueue(ctx, model.Record{Key: "k1"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueues should be rejected", func() {
				So(q.Enqueue(ctx, model.Record{Key: "k2"}), ShouldBeFalse)
				So(q.IsClosed(), ShouldBeTrue)
			})

			Convey("Then buffered records should still be delivered", func() {
				var got []string
				for rec := range q.Dequeue(ctx) {
					got = append(got, rec.Key)
				}
				So(got, ShouldResemble, []string{"k1"})
			})

			Convey("Then closing twice should be harmless", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a worker pool over a queue", t, func() {
		Convey("When processing a batch of records", func() {
			q := pipeline.NewInMemoryQueue()
			pool := pipeline.NewPool(4, q, pipeline.ProcessorFunc(
				func(ctx context.Context, rec model.Record) (model.Record, error) {
					rec.Set("processed", "yes")
					return rec, nil
				},
			))

			const n = 50
			pool.Start(ctx)
			for i := 0; i < n; i++ {
				So(q.Enqueue(ctx, model.Record{Key: fmt.Sprintf("k-%d", i)}), ShouldBeTrue)
			}
			So(q.Close(), ShouldBeNil)

			processed := 0
			for res := range pool.Results() {
				So(res.Err, ShouldBeNil)
				So(res.Record.Attrs["processed"], ShouldEqual, "yes")
				processed++
			}

			Convey("Then every record should come back exactly once", func() {
				So(processed, ShouldEqual, n)
			})
		})

		Convey("When the processor fails for some records", func() {
			q := pipeline.NewInMemoryQueue()
			boom := errors.New("boom")
			pool := pipeline.NewPool(2, q, pipeline.ProcessorFunc(
				func(ctx context.Context, rec model.Record) (model.Record, error) {
					if rec.Key == "bad" {
						return model.Record{}, boom
					}
					return rec, nil
				},
			))

			pool.Start(ctx)
			So(q.Enqueue(ctx, model.Record{Key: "good"}), ShouldBeTrue)
			So(q.Enqueue(ctx, model.Record{Key: "bad"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			var failed, succeeded int
			for res := range pool.Results() {
				if res.Err != nil {
					So(errors.Is(res.Err, boom), ShouldBeTrue)
					So(res.Record.Key, ShouldEqual, "bad")
					failed++
				} else {
					succeeded++
				}
			}

			Convey("Then failures should carry the original record", func() {
				So(failed, ShouldEqual, 1)
				So(succeeded, ShouldEqual, 1)
			})
		})

		Convey("When the context is cancelled mid-pass", func() {
			cctx, cancel := context.WithCancel(ctx)
			q := pipeline.NewInMemoryQueue()
			pool := pipeline.NewPool(1, q, pipeline.ProcessorFunc(
				func(ctx context.Context, rec model.Record) (model.Record, error) {
					return rec, nil
				},
			))

			pool.Start(cctx)
			cancel()

			Convey("Then the results channel should close promptly", func() {
				select {
				case _, open := <-pool.Results():
					So(open, ShouldBeFalse)
				case <-time.After(2 * time.Second):
					So("results channel never closed", ShouldBeEmpty)
				}
			})
		})
	})
}
