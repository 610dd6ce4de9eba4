package report_test

import (
	"testing"
	"time"

	"github.com/okian/trainlog/internal/domain/load"
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/report"
	"github.com/okian/trainlog/internal/domain/scoring"
	"github.com/okian/trainlog/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
)

// build runs the domain stages the way the service does.
func build(sessions []model.Session) report.Report {
	engine, err := load.New(load.WithFTP(250))
	if err != nil {
		panic(err)
	}
	metrics := engine.ComputeAll(sessions)
	tss := make([]model.Value, len(metrics))
	for i, m := range metrics {
		tss[i] = m.TSS
	}
	points := trend.New().Fold(trend.DailyLoads(sessions, tss))
	rec := scoring.NewRecoveryScorer().ScoreAll(report.RecoveryInputs(points, sessions))
	return report.Build(report.Input{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		Sessions:    sessions,
		Metrics:     metrics,
		Trend:       points,
		Recovery:    rec,
		Rows:        len(sessions) + 1,
		Collapsed:   1,
	})
}

func TestBuild(t *testing.T) {
	Convey("Given two weeks of sessions", t, func() {
		d := model.NewDate(2024, 1, 1) // Monday
		sessions := []model.Session{
			{Date: d, Activity: model.ActivityCycling, DurationSeconds: 3600, AvgPowerWatts: model.SomeFloat32(200), SleepHours: model.SomeFloat32(7)},
			{Date: d.AddDays(2), Activity: model.ActivityRunning, DurationSeconds: 1800},
			{Date: d.AddDays(8), Activity: model.ActivityCycling, DurationSeconds: 7200, AvgPowerWatts: model.SomeFloat32(250), SleepHours: model.SomeFloat32(9)},
			{Date: d.AddDays(9), Activity: model.ActivityOther, SleepHours: model.SomeFloat32(6)},
		}
		r := build(sessions)

		Convey("Then sessions carry their metrics", func() {
			So(r.Sessions, ShouldHaveLength, 4)
			So(r.Sessions[0].Metrics.TSS.V, ShouldAlmostEqual, 64, 1e-9)
			So(r.Sessions[1].Metrics.TSS.Ok(), ShouldBeFalse)
			So(r.Stats.Sessions, ShouldEqual, 4)
			So(r.Stats.Collapsed, ShouldEqual, 1)
		})

		Convey("Then weekly loads follow ISO weeks", func() {
			So(r.Weekly, ShouldHaveLength, 2)
			So(r.Weekly[0].Week, ShouldEqual, 1)
			So(r.Weekly[0].TSS, ShouldAlmostEqual, 64, 1e-9)
			So(r.Weekly[0].Sessions, ShouldEqual, 2)
			So(r.Weekly[0].DurationHours, ShouldAlmostEqual, 1.5, 1e-9)
			So(r.Weekly[1].TSS, ShouldAlmostEqual, 200, 1e-9)
		})

		Convey("Then there is a trend and recovery point per day", func() {
			So(r.Trend, ShouldHaveLength, 10)
			So(r.Recovery, ShouldHaveLength, 10)
			So(r.Recovery[0].Confidence, ShouldEqual, scoring.ConfidenceFull)
			So(r.Recovery[1].Confidence, ShouldEqual, scoring.ConfidencePartial)
			So(r.Trend[2].UnavailableSessions, ShouldEqual, 1)
		})

		Convey("Then KPIs cover the last seven days", func() {
			k := r.KPIs
			So(k.AsOf, ShouldEqual, d.AddDays(9))
			So(k.TSS7d, ShouldAlmostEqual, 200, 1e-9)
			So(k.KJ7d, ShouldAlmostEqual, 1800, 1e-9)
			So(k.TSB, ShouldEqual, r.Trend[9].TSB)
			So(k.AvgSleep7d.V, ShouldAlmostEqual, 7.5, 1e-9)
			So(k.AvgPower7d.V, ShouldAlmostEqual, 250, 1e-9)
			So(k.Form, ShouldNotBeBlank)
			So(k.Recovery, ShouldNotBeNil)
			So(k.Recovery.Date, ShouldEqual, d.AddDays(9))
		})

		Convey("Then flat export rows line up with the trend", func() {
			days := r.DailyRows()
			So(days, ShouldHaveLength, 10)
			So(days[0].Date, ShouldEqual, "2024-01-01")
			So(*days[0].SleepHours, ShouldEqual, 7)
			So(days[1].SleepHours, ShouldBeNil)
			So(days[1].Sessions, ShouldEqual, int32(0))
			So(days[0].RecoveryConfidence, ShouldEqual, "full")

			rows := r.SessionRows()
			So(rows, ShouldHaveLength, 4)
			So(rows[1].TSS, ShouldBeNil)
			So(*rows[0].TSS, ShouldAlmostEqual, 64, 1e-9)
			So(rows[0].TSSMethod, ShouldEqual, load.MethodPower)
		})
	})

	Convey("Given no sessions", t, func() {
		r := build(nil)
		So(r.Trend, ShouldBeEmpty)
		So(r.KPIs.AvgSleep7d.Ok(), ShouldBeFalse)
		So(r.DailyRows(), ShouldBeEmpty)
	})
}

func TestFormDescription(t *testing.T) {
	Convey("Form descriptions follow TSB bands", t, func() {
		So(report.FormDescription(30), ShouldEqual, "very fresh, possibly detrained")
		So(report.FormDescription(5), ShouldEqual, "neutral, good for training")
		So(report.FormDescription(-5), ShouldEqual, "slightly fatigued")
		So(report.FormDescription(-40), ShouldEqual, "very fatigued, rest needed")
	})
}
