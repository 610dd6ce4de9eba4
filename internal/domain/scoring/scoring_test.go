package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/trainlog/internal/domain/model"
	scoring "github.com/okian/trainlog/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecoveryScorer_Score(t *testing.T) {
	Convey("Given a default recovery scorer", t, func() {
		scorer := scoring.NewRecoveryScorer()

		Convey("When sleep and form are both ideal", func() {
			res := scorer.Score(scoring.Input{SleepHours: model.SomeFloat32(8), TSB: 0})

			Convey("Then the score is 100 with full confidence", func() {
				So(res.Score, ShouldEqual, 100)
				So(res.Confidence, ShouldEqual, scoring.ConfidenceFull)
				So(res.Partial(), ShouldBeFalse)
			})
		})

		Convey("When sleep is short and the athlete is fatigued", func() {
			res := scorer.Score(scoring.Input{SleepHours: model.SomeFloat32(6), TSB: -25})

			Convey("Then both components are blended evenly", func() {
				So(res.Sleep.V, ShouldAlmostEqual, 0.75, 1e-9)
				So(res.Form, ShouldAlmostEqual, 0.5, 1e-9)
				So(res.Score, ShouldAlmostEqual, 62.5, 1e-9)
			})
		})

		Convey("When sleep is missing", func() {
			res := scorer.Score(scoring.Input{TSB: 10})

			Convey("Then the score uses TSB alone and is flagged partial", func() {
				So(res.Partial(), ShouldBeTrue)
				So(res.Confidence, ShouldEqual, scoring.ConfidencePartial)
				So(res.Sleep.Ok(), ShouldBeFalse)
				So(res.Score, ShouldAlmostEqual, 80, 1e-9)
			})
		})

		Convey("When inputs are extreme", func() {
			for _, in := range []scoring.Input{
				{SleepHours: model.SomeFloat32(20), TSB: 0},
				{SleepHours: model.SomeFloat32(0), TSB: -400},
				{TSB: 1e9},
				{TSB: math.NaN()},
			} {
				res := scorer.Score(in)
				So(res.Score, ShouldBeBetweenOrEqual, 0, 100)
			}
		})
	})

	Convey("Given a scorer with custom weights", t, func() {
		scorer := scoring.NewRecoveryScorer(
			scoring.WithTargetSleep(9),
			scoring.WithTSBScale(30),
			scoring.WithSleepWeight(0.75),
		)

		Convey("When scoring a day", func() {
			res := scorer.Score(scoring.Input{SleepHours: model.SomeFloat32(9), TSB: -15})

			Convey("Then the options apply", func() {
				So(res.Score, ShouldAlmostEqual, (0.75*1+0.25*0.5)*100, 1e-9)
			})
		})

		Convey("When invalid options are passed they are ignored", func() {
			s := scoring.NewRecoveryScorer(scoring.WithSleepWeight(2), scoring.WithTargetSleep(-1))
			res := s.Score(scoring.Input{SleepHours: model.SomeFloat32(4), TSB: 0})
			So(res.Score, ShouldAlmostEqual, 75, 1e-9)
		})
	})

	Convey("Given several days", t, func() {
		out := scoring.NewRecoveryScorer().ScoreAll([]scoring.Input{{TSB: 0}, {TSB: 50}})
		So(out, ShouldHaveLength, 2)
		So(out[0].Score, ShouldEqual, 100)
		So(out[1].Score, ShouldEqual, 0)
	})
}
