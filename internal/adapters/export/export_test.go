package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/multierr"

	"github.com/okian/trainlog/internal/adapters/export"
	"github.com/okian/trainlog/internal/domain/load"
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/report"
	"github.com/okian/trainlog/internal/domain/scoring"
	"github.com/okian/trainlog/internal/domain/types"
)

func sampleReport() report.Report {
	d := model.NewDate(2024, 1, 5)
	return report.Report{
		Sessions: []report.SessionReport{
			{
				Session: model.Session{Date: d, Activity: model.ActivityCycling, DurationSeconds: 3600, Source: "garmin"},
				Metrics: load.MetricSet{
					TSS:        model.Available(64, load.MethodPower),
					IF:         model.Available(0.8, load.MethodPower),
					WattsPerKG: model.Unavailable("watts_per_kg", "body_mass_kg"),
				},
			},
		},
		Trend: []model.TrendPoint{
			{Date: d, TSS: 64, CTL: 64.0 / 42, ATL: 64.0 / 7},
			{Date: d.AddDays(1)},
		},
		Recovery: []scoring.Result{
			{Date: d, Score: 75, Confidence: scoring.ConfidencePartial},
		},
	}
}

func TestExporter(t *testing.T) {
	Convey("Given an exporter for every format", t, func() {
		dir := filepath.Join(t.TempDir(), "out")
		e, err := export.New(dir, []string{"CSV", "json", "parquet"})
		So(err, ShouldBeNil)

		paths, err := e.Export(context.Background(), sampleReport())

		Convey("Then two tables are written per format", func() {
			So(err, ShouldBeNil)
			So(paths, ShouldHaveLength, 6)
			for _, p := range paths {
				_, statErr := os.Stat(p)
				So(statErr, ShouldBeNil)
			}
		})

		Convey("Then CSV leaves unavailable values empty", func() {
			data, err := os.ReadFile(filepath.Join(dir, "sessions.csv"))
			So(err, ShouldBeNil)
			recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 2)
			So(recs[0][4], ShouldEqual, "tss")
			So(recs[1][4], ShouldEqual, "64")
			So(recs[1][5], ShouldEqual, "power")
			So(recs[1][10], ShouldEqual, "")
		})

		Convey("Then JSON keeps nulls", func() {
			data, err := os.ReadFile(filepath.Join(dir, "daily.json"))
			So(err, ShouldBeNil)
			var rows []types.DailyRow
			So(json.Unmarshal(data, &rows), ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[0].RecoveryConfidence, ShouldEqual, "partial")
			So(rows[1].SleepHours, ShouldBeNil)
		})

		Convey("Then parquet files carry the format magic", func() {
			data, err := os.ReadFile(filepath.Join(dir, "daily.parquet"))
			So(err, ShouldBeNil)
			So(len(data), ShouldBeGreaterThan, 8)
			So(string(data[:4]), ShouldEqual, "PAR1")
			So(string(data[len(data)-4:]), ShouldEqual, "PAR1")
		})
	})

	Convey("Given no formats", t, func() {
		dir := filepath.Join(t.TempDir(), "none")
		e, err := export.New(dir, nil)
		So(err, ShouldBeNil)

		paths, err := e.Export(context.Background(), sampleReport())

		Convey("Then nothing is written", func() {
			So(err, ShouldBeNil)
			So(paths, ShouldBeEmpty)
			_, statErr := os.Stat(dir)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})

	Convey("Given a target path that cannot be replaced", t, func() {
		dir := t.TempDir()
		So(os.Mkdir(filepath.Join(dir, "daily.json"), 0o755), ShouldBeNil)
		e, err := export.New(dir, []string{"json", "csv"})
		So(err, ShouldBeNil)

		paths, err := e.Export(context.Background(), sampleReport())

		Convey("Then the other tables are still written", func() {
			So(err, ShouldNotBeNil)
			So(multierr.Errors(err), ShouldHaveLength, 1)
			So(err.Error(), ShouldContainSubstring, "daily.json")
			So(paths, ShouldHaveLength, 3)
			_, statErr := os.Stat(filepath.Join(dir, "daily.json.tmp"))
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})

	Convey("Given an unknown format", t, func() {
		_, err := export.New(t.TempDir(), []string{"xlsx"})

		Convey("Then construction fails", func() {
			So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
		})
	})
}
