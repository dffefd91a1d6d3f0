package similarity_test

import (
	"testing"

	"github.com/nuray/setpoint/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTokenSetScorer(t *testing.T) {
	Convey("Given the token-set scorer", t, func() {
		s := similarity.NewTokenSetScorer()

		Convey("When comparing identical names", func() {
			Convey("Then the score should be the maximum", func() {
				So(s.Score("dolgopolov oleksandr", "dolgopolov oleksandr"), ShouldEqual, similarity.MaxScore)
			})
		})

		Convey("When comparing reordered tokens", func() {
			Convey("Then the score should still be the maximum", func() {
				So(s.Score("oleksandr dolgopolov", "dolgopolov oleksandr"), ShouldEqual, similarity.MaxScore)
			})
		})

		Convey("When one side is a subset of the other", func() {
			Convey("Then missing middle names should not be penalized", func() {
				So(s.Score("dolgopolov", "dolgopolov oleksandr"), ShouldEqual, similarity.MaxScore)
			})
		})

		Convey("When either side is empty", func() {
			Convey("Then the score should be zero", func() {
				So(s.Score("", "dolgopolov"), ShouldEqual, similarity.MinScore)
				So(s.Score("dolgopolov", ""), ShouldEqual, similarity.MinScore)
				So(s.Score("", ""), ShouldEqual, similarity.MinScore)
			})
		})

		Convey("When comparing unrelated names", func() {
			Convey("Then the score should be low", func() {
				So(s.Score("sinner j.", "swiatek iga"), ShouldBeLessThan, 60)
			})
		})

		Convey("When comparing in either direction", func() {
			Convey("Then the score should be symmetric", func() {
				a, b := "j. dolhopolov", "dolgopolov oleksandr"
				So(s.Score(a, b), ShouldEqual, s.Score(b, a))
			})
		})
	})
}
