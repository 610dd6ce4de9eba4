package load_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/trainlog/internal/domain/load"
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func ride(duration, avgPower, ftp float64) model.Session {
	s := model.Session{
		Date:            model.NewDate(2024, 1, 5),
		Activity:        model.ActivityCycling,
		DurationSeconds: float32(duration),
	}
	if avgPower > 0 {
		s.AvgPowerWatts = model.SomeFloat32(avgPower)
	}
	if ftp > 0 {
		s.FTPWatts = model.SomeFloat32(ftp)
	}
	return s
}

func constant(v float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestPowerMetrics(t *testing.T) {
	Convey("Given a default engine", t, func() {
		e := load.Default()

		Convey("When a ride has average power and FTP", func() {
			ms := e.Compute(ride(3600, 200, 250))

			Convey("Then NP falls back to average power and TSS follows", func() {
				So(ms.NP.V, ShouldEqual, 200)
				So(ms.NP.Method, ShouldEqual, load.MethodAvgPower)
				So(ms.IF.V, ShouldAlmostEqual, 0.8, 1e-9)
				So(ms.TSS.V, ShouldAlmostEqual, 64, 1e-9)
				So(ms.TSS.Method, ShouldEqual, load.MethodPower)
			})

			Convey("And work is derived from average power", func() {
				So(ms.KJ.V, ShouldAlmostEqual, 720, 1e-9)
				So(ms.Kcal.V, ShouldAlmostEqual, 684, 1e-9)
			})
		})

		Convey("When a power stream exists", func() {
			s := ride(120, 0, 250)
			s.PowerStream = append(constant(100, 60), constant(300, 60)...)
			ms := e.Compute(s)

			Convey("Then NP weights hard efforts above the plain average", func() {
				So(ms.NP.Method, ShouldEqual, load.MethodStream)
				So(ms.NP.V, ShouldBeGreaterThan, 200)
				So(ms.NP.V, ShouldBeLessThan, 300)
			})
		})

		Convey("When the stream is steady", func() {
			s := ride(600, 0, 250)
			s.PowerStream = constant(220, 600)
			So(e.Compute(s).NP.V, ShouldAlmostEqual, 220, 1e-4)
		})

		Convey("When the stream is shorter than the window", func() {
			s := ride(10, 0, 250)
			s.PowerStream = []float32{100, 200, 300}
			So(e.Compute(s).NP.V, ShouldAlmostEqual, 200, 1e-9)
		})

		Convey("When FTP only comes from the athlete profile", func() {
			withFTP, err := load.New(load.WithFTP(200))
			So(err, ShouldBeNil)
			ms := withFTP.Compute(ride(3600, 200, 0))
			So(ms.IF.V, ShouldAlmostEqual, 1, 1e-9)
			So(ms.TSS.V, ShouldAlmostEqual, 100, 1e-9)

			Convey("Then a session FTP still overrides it", func() {
				ms := withFTP.Compute(ride(3600, 200, 400))
				So(ms.IF.V, ShouldAlmostEqual, 0.5, 1e-9)
			})
		})
	})
}

func TestMissingInputs(t *testing.T) {
	Convey("Given a default engine", t, func() {
		e := load.Default()

		Convey("When a ride has no power and no pace", func() {
			s := ride(3600, 0, 250)
			s.RPE = model.SomeUint8(6)
			ms := e.Compute(s)

			Convey("Then TSS is unavailable, not zero", func() {
				So(ms.TSS.Ok(), ShouldBeFalse)
				So(ms.TSS.V, ShouldEqual, 0)
				So(ms.TSS.Ptr(), ShouldBeNil)
				So(ms.TSS.Missing.Fields, ShouldContain, "avg_power_watts")
				So(errors.Is(ms.TSS.Err(), model.ErrMissingInput), ShouldBeTrue)
				So(ms.IF.Ok(), ShouldBeFalse)
				So(ms.NP.Ok(), ShouldBeFalse)
				So(ms.KJ.Ok(), ShouldBeFalse)
				So(ms.Kcal.Ok(), ShouldBeFalse)
			})
		})

		Convey("When body mass is missing", func() {
			ms := e.Compute(ride(3600, 200, 250))

			Convey("Then watts per kg is unavailable", func() {
				So(ms.WattsPerKG.Ok(), ShouldBeFalse)
				So(ms.WattsPerKG.Missing.Fields, ShouldResemble, []string{"body_mass_kg"})
			})
		})

		Convey("When body mass is present", func() {
			s := ride(3600, 200, 250)
			s.BodyMassKG = model.SomeFloat32(80)
			So(e.Compute(s).WattsPerKG.V, ShouldAlmostEqual, 2.5, 1e-9)
		})

		Convey("When only a power stream is recorded", func() {
			s := ride(3600, 0, 250)
			s.PowerStream = constant(200, 3600)
			s.BodyMassKG = model.SomeFloat32(80)
			ms := e.Compute(s)

			Convey("Then work and watts per kg use the stream mean", func() {
				So(ms.KJ.V, ShouldAlmostEqual, 720, 1e-6)
				So(ms.KJ.Method, ShouldEqual, load.MethodMean)
				So(ms.Kcal.V, ShouldAlmostEqual, 684, 1e-6)
				So(ms.WattsPerKG.V, ShouldAlmostEqual, 2.5, 1e-9)
				So(ms.WattsPerKG.Method, ShouldEqual, load.MethodMean)
			})
		})

		Convey("When duration is missing", func() {
			ms := e.Compute(ride(0, 200, 250))
			So(ms.TSS.Ok(), ShouldBeFalse)
			So(ms.TSS.Missing.Fields, ShouldContain, "duration_seconds")
			So(ms.KJ.Ok(), ShouldBeFalse)
		})

		Convey("When results are serialized", func() {
			b, err := json.Marshal(e.Compute(ride(3600, 0, 0)))
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"tss":{"value":null`)
		})
	})
}

func TestPaceMetrics(t *testing.T) {
	Convey("Given an engine with a running threshold pace of 4:30/km", t, func() {
		e, err := load.New(load.WithThresholdPace(270))
		So(err, ShouldBeNil)

		Convey("When a run without power has a 5:00/km pace", func() {
			s := model.Session{
				Date:            model.NewDate(2024, 1, 6),
				Activity:        model.ActivityRunning,
				DurationSeconds: 3000,
				AvgSpeedMPS:     model.SomeFloat32(1000.0 / 300.0),
			}
			ms := e.Compute(s)

			Convey("Then TSS follows the pace formula", func() {
				So(ms.IF.Method, ShouldEqual, load.MethodPace)
				So(ms.IF.V, ShouldAlmostEqual, 0.9, 1e-6)
				So(ms.TSS.V, ShouldAlmostEqual, 3000*0.81/3600*100, 1e-4)
			})
		})

		Convey("When a run has no pace", func() {
			ms := e.Compute(model.Session{Activity: model.ActivityRunning, DurationSeconds: 3000})
			So(ms.TSS.Ok(), ShouldBeFalse)
			So(ms.TSS.Missing.Fields, ShouldContain, "avg_speed_mps")
		})
	})
}

func TestFallbacks(t *testing.T) {
	Convey("Given an engine with RPE then HR fallbacks", t, func() {
		chain, err := load.ParseFallbacks([]string{"RPE", "hr", "rpe"})
		So(err, ShouldBeNil)
		So(chain, ShouldResemble, []load.Fallback{load.FallbackRPE, load.FallbackHR})

		e, err := load.New(load.WithFallbacks(chain...), load.WithThresholdHR(160))
		So(err, ShouldBeNil)

		Convey("When a run only has RPE", func() {
			s := model.Session{Activity: model.ActivityRunning, DurationSeconds: 45 * 60, RPE: model.SomeUint8(6)}
			ms := e.Compute(s)

			Convey("Then TSS is estimated from RPE", func() {
				So(ms.TSS.Method, ShouldEqual, "rpe")
				So(ms.TSS.V, ShouldAlmostEqual, 54, 1e-9)
				So(ms.IF.Ok(), ShouldBeFalse)
			})
		})

		Convey("When a ride only has heart rate", func() {
			s := ride(3600, 0, 0)
			s.AvgHR = model.SomeInt16(150)
			ms := e.Compute(s)

			Convey("Then TSS is estimated from heart rate", func() {
				So(ms.TSS.Method, ShouldEqual, "hr")
				So(ms.IF.V, ShouldAlmostEqual, 0.9375, 1e-9)
				So(ms.TSS.V, ShouldAlmostEqual, 87.890625, 1e-9)
			})
		})

		Convey("When nothing in the chain applies", func() {
			ms := e.Compute(ride(3600, 0, 0))
			So(ms.TSS.Ok(), ShouldBeFalse)
			So(ms.TSS.Missing.Fields, ShouldContain, "rpe")
			So(ms.TSS.Missing.Fields, ShouldContain, "avg_hr")
		})
	})

	Convey("Unknown fallbacks are configuration errors", t, func() {
		_, err := load.ParseFallbacks([]string{"vibes"})
		So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
	})
}

func TestZones(t *testing.T) {
	Convey("Given a default engine", t, func() {
		e := load.Default()

		Convey("When a ride has a power stream and FTP", func() {
			s := ride(3600, 0, 200)
			s.PowerStream = []float32{0, 50, 100, 120, 160, 190, 230, 270, 600, 5000}
			dist := e.Compute(s).Zones

			Convey("Then buckets cover the whole duration", func() {
				So(dist.Ok(), ShouldBeTrue)
				So(dist.Basis, ShouldEqual, load.BasisPower)
				So(dist.Total(), ShouldAlmostEqual, 3600, 1e-6)
			})

			Convey("And out-of-range samples clamp to the edge zones", func() {
				m := dist.Map()
				So(m["z1"], ShouldAlmostEqual, 1080, 1e-6)
				So(m["z7"], ShouldAlmostEqual, 720, 1e-6)
				So(m["z4"], ShouldAlmostEqual, 360, 1e-6)
			})
		})

		Convey("When only a heart-rate stream exists", func() {
			s := model.Session{Activity: model.ActivityRunning, DurationSeconds: 4, ThresholdHR: model.SomeInt16(170),
				HRStream: []float32{120, 150, 165, 180}}
			dist := e.Compute(s).Zones
			So(dist.Basis, ShouldEqual, load.BasisHeartRate)
			So(dist.Total(), ShouldAlmostEqual, 4, 1e-9)
			So(dist.Map()["z5"], ShouldEqual, 1)
		})

		Convey("When the duration is unknown the distribution is unavailable", func() {
			s := ride(0, 0, 200)
			s.PowerStream = constant(150, 4)
			dist := e.Compute(s).Zones
			So(dist.Ok(), ShouldBeFalse)
			So(dist.Missing.Fields, ShouldResemble, []string{"duration_seconds"})
			So(dist.Total(), ShouldEqual, 0)
		})

		Convey("When there are no streams", func() {
			dist := e.Compute(ride(3600, 200, 250)).Zones
			So(dist.Ok(), ShouldBeFalse)
			So(dist.Missing.Fields, ShouldResemble, []string{"power_stream", "hr_stream"})
		})
	})

	Convey("Given invalid zone configurations", t, func() {
		overlap := types.NewZoneSet(map[string]types.ZoneBounds{
			"a": {LowerPct: 0, UpperPct: 60},
			"b": {LowerPct: 55, UpperPct: 80},
		})
		inverted := types.ZoneSet{{ID: "a", ZoneBounds: types.ZoneBounds{LowerPct: 50, UpperPct: 40}}}
		unordered := types.ZoneSet{
			{ID: "hi", ZoneBounds: types.ZoneBounds{LowerPct: 60, UpperPct: 80}},
			{ID: "lo", ZoneBounds: types.ZoneBounds{LowerPct: 0, UpperPct: 50}},
		}

		for name, zs := range map[string]types.ZoneSet{"overlap": overlap, "inverted": inverted, "unordered": unordered, "empty": nil} {
			Convey("When the zones are "+name+" the engine refuses to start", func() {
				_, err := load.New(load.WithPowerZones(zs))
				So(err, ShouldNotBeNil)
				So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
				var ce *model.ConfigurationError
				So(errors.As(err, &ce), ShouldBeTrue)
				So(ce.Field, ShouldEqual, "power_zones")
			})
		}

		Convey("Gaps between zones are allowed", func() {
			gappy := types.NewZoneSet(map[string]types.ZoneBounds{
				"a": {LowerPct: 0, UpperPct: 50},
				"b": {LowerPct: 60, UpperPct: 80},
			})
			So(load.ValidateZones("hr_zones", gappy), ShouldBeNil)
		})
	})
}
