package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/trainlog/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDate(t *testing.T) {
	Convey("Given calendar dates", t, func() {
		Convey("ParseDate accepts common layouts", func() {
			for _, s := range []string{"2024-01-05", "2024/01/05", "01/05/2024", "1/5/2024", "2024-01-05T06:30:00Z"} {
				d, err := model.ParseDate(s)
				So(err, ShouldBeNil)
				So(d.String(), ShouldEqual, "2024-01-05")
			}
		})

		Convey("ParseDate rejects garbage", func() {
			_, err := model.ParseDate("yesterday")
			So(err, ShouldNotBeNil)
			_, err = model.ParseDate("  ")
			So(err, ShouldNotBeNil)
		})

		Convey("Spreadsheet serials convert", func() {
			d, err := model.DateFromSerial(45296)
			So(err, ShouldBeNil)
			So(d.String(), ShouldEqual, "2024-01-05")
			_, err = model.DateFromSerial(math.NaN())
			So(err, ShouldNotBeNil)
		})

		Convey("Arithmetic walks whole days", func() {
			d := model.NewDate(2024, time.February, 28)
			So(d.AddDays(1).String(), ShouldEqual, "2024-02-29")
			So(d.AddDays(2).String(), ShouldEqual, "2024-03-01")
			So(d.Before(d.AddDays(1)), ShouldBeTrue)
		})

		Convey("WeekStart is the ISO Monday", func() {
			So(model.NewDate(2024, time.January, 7).WeekStart().String(), ShouldEqual, "2024-01-01")
			So(model.NewDate(2024, time.January, 1).WeekStart().String(), ShouldEqual, "2024-01-01")
		})

		Convey("DateOf ignores the clock", func() {
			at := time.Date(2024, time.January, 5, 23, 59, 0, 0, time.UTC)
			So(model.DateOf(at), ShouldEqual, model.NewDate(2024, time.January, 5))
		})
	})
}

func TestActivityType(t *testing.T) {
	Convey("Activity aliases map to the three kinds", t, func() {
		a, ok := model.ParseActivityType(" Bike ")
		So(ok, ShouldBeTrue)
		So(a, ShouldEqual, model.ActivityCycling)

		a, ok = model.ParseActivityType("Run")
		So(ok, ShouldBeTrue)
		So(a, ShouldEqual, model.ActivityRunning)

		a, ok = model.ParseActivityType("yoga")
		So(ok, ShouldBeFalse)
		So(a, ShouldEqual, model.ActivityOther)
		So(a.String(), ShouldEqual, "other")
	})
}

func TestNullable(t *testing.T) {
	Convey("Narrowing drops values that do not fit", t, func() {
		So(model.SomeFloat32(math.NaN()).Valid, ShouldBeFalse)
		So(model.SomeFloat32(math.Inf(1)).Valid, ShouldBeFalse)
		So(model.SomeFloat32(1e300).Valid, ShouldBeFalse)
		So(model.SomeFloat32(250).Valid, ShouldBeTrue)
		So(model.SomeInt16(70000).Valid, ShouldBeFalse)
		So(model.SomeUint8(-1).Valid, ShouldBeFalse)
		So(model.SomeUint8(6.6).Uint8, ShouldEqual, 7)
	})

	Convey("Absent values marshal as null", t, func() {
		b, err := json.Marshal(struct {
			P model.NullFloat32 `json:"p"`
			H model.NullInt16   `json:"h"`
		}{H: model.SomeInt16(150)})
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `{"p":null,"h":150}`)
	})
}

func TestValue(t *testing.T) {
	Convey("Given derived values", t, func() {
		Convey("Available values expose the number", func() {
			v := model.Available(72.5, "power")
			x, ok := v.Get()
			So(ok, ShouldBeTrue)
			So(x, ShouldEqual, 72.5)
			So(v.Err(), ShouldBeNil)
		})

		Convey("Unavailable values carry the missing fields", func() {
			v := model.Unavailable("tss", "ftp_watts", "avg_power_watts", "ftp_watts")
			So(v.Ok(), ShouldBeFalse)
			So(v.Ptr(), ShouldBeNil)
			So(v.Missing.Fields, ShouldResemble, []string{"avg_power_watts", "ftp_watts"})
			So(errors.Is(v.Err(), model.ErrMissingInput), ShouldBeTrue)

			b, err := json.Marshal(v)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"value":null,"missing":["avg_power_watts","ftp_watts"]}`)
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Typed errors unwrap to their kind", t, func() {
		var err error = &model.DataIntegrityError{Source: "a.csv", Row: 4, Field: "date", Reason: "unparsable"}
		So(errors.Is(err, model.ErrDataIntegrity), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "row 4")

		err = &model.ConfigurationError{Field: "power_zones", Reason: "overlap"}
		So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)

		var ce *model.ConfigurationError
		So(errors.As(err, &ce), ShouldBeTrue)
		So(ce.Field, ShouldEqual, "power_zones")
	})
}

func TestSessionCompleteness(t *testing.T) {
	Convey("Completeness counts populated measurements", t, func() {
		s := model.Session{Date: model.NewDate(2024, 1, 5), Activity: model.ActivityCycling}
		So(s.Completeness(), ShouldEqual, 0)
		s.DurationSeconds = 3600
		s.AvgPowerWatts = model.SomeFloat32(200)
		s.PowerStream = []float32{200, 210}
		So(s.Completeness(), ShouldEqual, 3)
		So(s.Key(), ShouldResemble, model.Key{Date: s.Date, Activity: model.ActivityCycling})
	})
}
